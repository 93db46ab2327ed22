package collab

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/refboard/refboard/internal/document"
)

const saveTimeout = 10 * time.Second

// Loader fetches the board a room starts from.
type Loader func(ctx context.Context, boardID string) (*document.Board, error)

// Saver persists a room's board.
type Saver func(ctx context.Context, boardID string, board *document.Board) error

type Room struct {
	boardID  string
	clients  map[string]*Client // clientID -> client
	presence *PresenceManager
	doc      *DocumentState
}

func NewRoom(boardID string, board *document.Board) *Room {
	return &Room{
		boardID:  boardID,
		clients:  make(map[string]*Client),
		presence: NewPresenceManager(),
		doc:      NewDocumentState(board),
	}
}

type Hub struct {
	mu         sync.RWMutex
	rooms      map[string]*Room // boardID -> room
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	load Loader
	save Saver
}

// NewHub creates a hub. A nil loader starts every room from an empty
// board; a nil saver discards edits when a room closes.
func NewHub(load Loader, save Saver) *Hub {
	return &Hub{
		rooms:      make(map[string]*Room),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		load:       load,
		save:       save,
	}
}

// Run serves registrations until ctx is cancelled, then saves every dirty
// room.
func (h *Hub) Run(ctx context.Context) error {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.addClient(ctx, client)
		case client := <-h.unregister:
			h.removeClient(client)
		case <-ctx.Done():
			h.saveAll()
			return nil
		}
	}
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) openRoom(ctx context.Context, boardID string) (*Room, error) {
	h.mu.RLock()
	room, ok := h.rooms[boardID]
	h.mu.RUnlock()
	if ok {
		return room, nil
	}

	board := document.NewEmptyBoard(boardID, "Untitled")
	if h.load != nil {
		loadCtx, cancel := context.WithTimeout(ctx, saveTimeout)
		b, err := h.load(loadCtx, boardID)
		cancel()
		if err != nil {
			return nil, err
		}
		board = b
	}

	room = NewRoom(boardID, board)
	h.mu.Lock()
	h.rooms[boardID] = room
	h.mu.Unlock()
	return room, nil
}

func (h *Hub) addClient(ctx context.Context, client *Client) {
	room, err := h.openRoom(ctx, client.BoardID)
	if err != nil {
		slog.Error("open room", "error", err, "board", client.BoardID)
		client.Send(newMessage(TypeError, ErrorPayload{Message: "board unavailable"}))
		close(client.send)
		return
	}

	h.mu.Lock()
	room.clients[client.ClientID] = client
	h.mu.Unlock()

	board, seq := room.doc.Checkpoint()
	client.Send(newMessage(TypeWelcome, WelcomePayload{ClientID: client.ClientID, ServerSeq: seq}))
	client.Send(newMessage(TypeDocSync, DocSyncPayload{Board: board, ServerSeq: seq}))
	client.Send(room.presence.StateMessage())

	// Broadcast join to other clients
	joinMsg := newMessage(TypePresenceJoin, PresenceJoinPayload{
		UserID:      client.UserID,
		DisplayName: client.DisplayName,
	})
	joinMsg.UserID = client.UserID
	h.broadcastToRoom(client.BoardID, joinMsg, client.ClientID)

	slog.Info("client joined", "user", client.UserID, "board", client.BoardID)
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.BoardID]
	if !ok {
		h.mu.Unlock()
		return
	}
	if _, member := room.clients[client.ClientID]; !member {
		h.mu.Unlock()
		return
	}

	delete(room.clients, client.ClientID)
	close(client.send)
	room.presence.Remove(client.UserID)

	empty := len(room.clients) == 0
	if empty {
		delete(h.rooms, client.BoardID)
	}
	h.mu.Unlock()

	if empty {
		h.saveRoom(room)
	}

	// Broadcast leave to remaining clients
	leaveMsg := newMessage(TypePresenceLeave, PresenceLeavePayload{UserID: client.UserID})
	leaveMsg.UserID = client.UserID
	h.broadcastToRoom(client.BoardID, leaveMsg, "")

	slog.Info("client left", "user", client.UserID, "board", client.BoardID)
}

func (h *Hub) saveRoom(room *Room) {
	if h.save == nil || !room.doc.Dirty() {
		return
	}

	board, seq := room.doc.Checkpoint()
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := h.save(ctx, room.boardID, board); err != nil {
		slog.Error("save board", "error", err, "board", room.boardID)
		return
	}
	room.doc.MarkSaved(seq)
	slog.Info("board saved", "board", room.boardID, "seq", seq)
}

func (h *Hub) saveAll() {
	h.mu.RLock()
	rooms := make([]*Room, 0, len(h.rooms))
	for _, r := range h.rooms {
		rooms = append(rooms, r)
	}
	h.mu.RUnlock()

	for _, r := range rooms {
		h.saveRoom(r)
	}
}

// roomOf returns the room the client is a member of.
func (h *Hub) roomOf(c *Client) (*Room, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	room, ok := h.rooms[c.BoardID]
	if !ok {
		return nil, false
	}
	_, member := room.clients[c.ClientID]
	return room, member
}

func (h *Hub) handleMessage(sender *Client, msg *Message) {
	switch msg.Type {
	case TypePresenceUpdate:
		h.handlePresenceUpdate(sender, msg)
	case TypeOpSubmit:
		h.handleOpSubmit(sender, msg)
	default:
		slog.Warn("unknown message type", "type", msg.Type, "user", sender.UserID)
	}
}

func (h *Hub) handlePresenceUpdate(sender *Client, msg *Message) {
	var presence PresencePayload
	if err := json.Unmarshal(msg.Payload, &presence); err != nil {
		slog.Warn("invalid presence payload", "error", err)
		return
	}

	presence.DisplayName = sender.DisplayName

	room, ok := h.roomOf(sender)
	if !ok {
		return
	}

	room.presence.Update(sender.UserID, &presence)

	// Broadcast to other clients in room
	outMsg := newMessage(TypePresenceUpdate, presence)
	outMsg.UserID = sender.UserID
	h.broadcastToRoom(sender.BoardID, outMsg, sender.ClientID)
}

func (h *Hub) handleOpSubmit(sender *Client, msg *Message) {
	room, ok := h.roomOf(sender)
	if !ok {
		return
	}

	var submit OperationSubmitPayload
	if err := json.Unmarshal(msg.Payload, &submit); err != nil {
		slog.Warn("invalid operation payload", "error", err, "user", sender.UserID)
		sender.Send(newMessage(TypeError, ErrorPayload{Message: "invalid operation payload"}))
		return
	}
	op := submit.Operation

	seq, err := room.doc.ApplyOperation(op)
	if err != nil {
		slog.Warn("reject operation", "error", err, "op", op.Type, "user", sender.UserID)
		sender.Send(newMessage(TypeOpNack, OperationNackPayload{
			OperationID: op.ID,
			Reason:      err.Error(),
		}))
		return
	}

	if op.Type == OpNodeRemove {
		room.presence.Deselect(op.ReferenceID)
	}

	ack := newMessage(TypeOpAck, OperationAckPayload{
		OperationID:     op.ID,
		ServerSeq:       seq,
		ServerTimestamp: GetServerTimestamp(),
	})
	ack.Seq = seq
	sender.Send(ack)

	out := newMessage(TypeOpBroadcast, OperationBroadcastPayload{
		Operation: op,
		UserID:    sender.UserID,
		ServerSeq: seq,
	})
	out.Seq = seq
	out.UserID = sender.UserID
	h.broadcastToRoom(sender.BoardID, out, sender.ClientID)
}

func (h *Hub) broadcastToRoom(boardID string, msg *Message, excludeClientID string) {
	// Send never blocks, so holding the read lock keeps removeClient from
	// closing a channel mid-send.
	h.mu.RLock()
	defer h.mu.RUnlock()

	room, ok := h.rooms[boardID]
	if !ok {
		return
	}
	for _, c := range room.clients {
		if c.ClientID != excludeClientID {
			c.Send(msg)
		}
	}
}
