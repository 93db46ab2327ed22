package collab

import (
	"encoding/json"

	"github.com/refboard/refboard/internal/document"
	"github.com/refboard/refboard/internal/geom"
)

type Message struct {
	Type     string          `json:"type"`
	BoardID  string          `json:"boardId,omitempty"`
	ClientID string          `json:"clientId,omitempty"`
	UserID   string          `json:"userId,omitempty"`
	Seq      int64           `json:"seq,omitempty"`
	Payload  json.RawMessage `json:"payload"`
}

type PresencePayload struct {
	Cursor      *CursorPos        `json:"cursor,omitempty"`
	Selection   []string          `json:"selection,omitempty"`
	Paradigm    document.Paradigm `json:"paradigm,omitempty"`
	DisplayName string            `json:"displayName,omitempty"`
}

// CursorPos is a pointer position in world units of the sender's active
// paradigm.
type CursorPos struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type PresenceStatePayload struct {
	Presences map[string]*PresencePayload `json:"presences"`
}

type PresenceJoinPayload struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
}

type PresenceLeavePayload struct {
	UserID string `json:"userId"`
}

// WelcomePayload is sent first on every connection.
type WelcomePayload struct {
	ClientID  string `json:"clientId"`
	ServerSeq int64  `json:"serverSeq"`
}

// DocSyncPayload carries the full board.
type DocSyncPayload struct {
	Board     *document.Board `json:"board"`
	ServerSeq int64           `json:"serverSeq"`
}

const (
	TypePresenceUpdate = "presence.update"
	TypePresenceState  = "presence.state"
	TypePresenceJoin   = "presence.join"
	TypePresenceLeave  = "presence.leave"
	TypeError          = "error"

	// Connection
	TypeWelcome = "welcome"

	// Document sync
	TypeDocSync = "doc.sync"

	// Operation message types
	TypeOpSubmit    = "op.submit"
	TypeOpAck       = "op.ack"
	TypeOpNack      = "op.nack"
	TypeOpBroadcast = "op.broadcast"
)

// Operation types
const (
	OpReferenceAdd  = "reference.add"
	OpNodeMove      = "node.move"
	OpNodeRemove    = "node.remove"
	OpStrengthSet   = "strength.set"
	OpStrengthClear = "strength.clear"
	OpMainSet       = "main.set"
	OpBoardRename   = "board.rename"
)

// Operation represents a board mutation
type Operation struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Timestamp   int64  `json:"timestamp"`
	ClientSeq   int64  `json:"clientSeq"`
	ReferenceID string `json:"referenceId,omitempty"`

	// For reference.add
	Reference *document.Reference `json:"reference,omitempty"`

	// For node.move; either or both may be set
	Canvas  *geom.Point `json:"canvas,omitempty"`
	Orbital *geom.Polar `json:"orbital,omitempty"`

	// For strength.set
	Strength *int `json:"strength,omitempty"`

	// For board.rename
	Name         string `json:"name,omitempty"`
	PreviousName string `json:"previousName,omitempty"`
}

// OperationSubmitPayload is the payload for op.submit messages
type OperationSubmitPayload struct {
	Operation Operation `json:"operation"`
}

// OperationAckPayload is the payload for op.ack messages
type OperationAckPayload struct {
	OperationID     string `json:"operationId"`
	ServerSeq       int64  `json:"serverSeq"`
	ServerTimestamp int64  `json:"serverTimestamp"`
}

// OperationNackPayload is the payload for op.nack messages
type OperationNackPayload struct {
	OperationID string `json:"operationId"`
	Reason      string `json:"reason"`
}

// OperationBroadcastPayload is the payload for op.broadcast messages
type OperationBroadcastPayload struct {
	Operation Operation `json:"operation"`
	UserID    string    `json:"userId"`
	ServerSeq int64     `json:"serverSeq"`
}

// ErrorPayload is the payload for error messages
type ErrorPayload struct {
	Message string `json:"message"`
}

func newMessage(typ string, payload any) *Message {
	data, _ := json.Marshal(payload)
	return &Message{Type: typ, Payload: data}
}
