package collab

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/refboard/refboard/internal/document"
	"github.com/refboard/refboard/internal/geom"
)

type savedBoard struct {
	boardID string
	board   *document.Board
}

func newTestHub(saved *[]savedBoard) *Hub {
	load := func(_ context.Context, boardID string) (*document.Board, error) {
		b := testBoard()
		b.ID = boardID
		return b, nil
	}
	save := func(_ context.Context, boardID string, b *document.Board) error {
		*saved = append(*saved, savedBoard{boardID: boardID, board: b})
		return nil
	}
	return NewHub(load, save)
}

func drain(t *testing.T, c *Client) []Message {
	t.Helper()
	var out []Message
	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				return out
			}
			var m Message
			require.NoError(t, json.Unmarshal(data, &m))
			out = append(out, m)
		default:
			return out
		}
	}
}

func types(msgs []Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.Type
	}
	return out
}

func submit(t *testing.T, op Operation) *Message {
	t.Helper()
	payload, err := json.Marshal(OperationSubmitPayload{Operation: op})
	require.NoError(t, err)
	return &Message{Type: TypeOpSubmit, Payload: payload}
}

func TestJoinSendsWelcomeAndBoard(t *testing.T) {
	var saved []savedBoard
	h := newTestHub(&saved)
	ctx := context.Background()

	a := NewClient(h, nil, "u1", "Ada", "board_1", "c1")
	h.addClient(ctx, a)

	msgs := drain(t, a)
	require.Equal(t, []string{TypeWelcome, TypeDocSync, TypePresenceState}, types(msgs))

	var sync DocSyncPayload
	require.NoError(t, json.Unmarshal(msgs[1].Payload, &sync))
	assert.Equal(t, "board_1", sync.Board.ID)
	assert.Equal(t, []string{"r1", "r2"}, sync.Board.IDs())

	b := NewClient(h, nil, "u2", "Bo", "board_1", "c2")
	h.addClient(ctx, b)
	drain(t, b)

	assert.Equal(t, []string{TypePresenceJoin}, types(drain(t, a)))
}

func TestOperationAckAndBroadcast(t *testing.T) {
	var saved []savedBoard
	h := newTestHub(&saved)
	ctx := context.Background()

	a := NewClient(h, nil, "u1", "Ada", "board_1", "c1")
	b := NewClient(h, nil, "u2", "Bo", "board_1", "c2")
	h.addClient(ctx, a)
	h.addClient(ctx, b)
	drain(t, a)
	drain(t, b)

	h.handleMessage(a, submit(t, Operation{
		ID:          "op1",
		Type:        OpNodeMove,
		ReferenceID: "r1",
		Canvas:      &geom.Point{X: 40, Y: 60},
	}))

	fromA := drain(t, a)
	require.Equal(t, []string{TypeOpAck}, types(fromA))
	var ack OperationAckPayload
	require.NoError(t, json.Unmarshal(fromA[0].Payload, &ack))
	assert.Equal(t, "op1", ack.OperationID)
	assert.Equal(t, int64(1), ack.ServerSeq)

	fromB := drain(t, b)
	require.Equal(t, []string{TypeOpBroadcast}, types(fromB))
	var bc OperationBroadcastPayload
	require.NoError(t, json.Unmarshal(fromB[0].Payload, &bc))
	assert.Equal(t, "u1", bc.UserID)
	assert.Equal(t, geom.Point{X: 40, Y: 60}, *bc.Operation.Canvas)
}

func TestRejectedOperationIsNacked(t *testing.T) {
	var saved []savedBoard
	h := newTestHub(&saved)
	ctx := context.Background()

	a := NewClient(h, nil, "u1", "Ada", "board_1", "c1")
	b := NewClient(h, nil, "u2", "Bo", "board_1", "c2")
	h.addClient(ctx, a)
	h.addClient(ctx, b)
	drain(t, a)
	drain(t, b)

	h.handleMessage(a, submit(t, Operation{ID: "op1", Type: OpStrengthClear, ReferenceID: "missing"}))

	fromA := drain(t, a)
	require.Equal(t, []string{TypeOpNack}, types(fromA))
	var nack OperationNackPayload
	require.NoError(t, json.Unmarshal(fromA[0].Payload, &nack))
	assert.Equal(t, "op1", nack.OperationID)
	assert.Contains(t, nack.Reason, "reference not found")
	assert.Empty(t, drain(t, b))
}

func TestLastLeaveSavesDirtyBoard(t *testing.T) {
	var saved []savedBoard
	h := newTestHub(&saved)
	ctx := context.Background()

	a := NewClient(h, nil, "u1", "Ada", "board_1", "c1")
	h.addClient(ctx, a)
	h.handleMessage(a, submit(t, Operation{ID: "op1", Type: OpBoardRename, Name: "Renamed"}))

	h.removeClient(a)

	require.Len(t, saved, 1)
	assert.Equal(t, "board_1", saved[0].boardID)
	assert.Equal(t, "Renamed", saved[0].board.Name)
	assert.Empty(t, h.rooms)
}

func TestCleanRoomIsNotSaved(t *testing.T) {
	var saved []savedBoard
	h := newTestHub(&saved)

	a := NewClient(h, nil, "u1", "Ada", "board_1", "c1")
	h.addClient(context.Background(), a)
	h.removeClient(a)
	h.removeClient(a)

	assert.Empty(t, saved)
}

func TestRunSavesOnShutdown(t *testing.T) {
	var saved []savedBoard
	h := newTestHub(&saved)

	a := NewClient(h, nil, "u1", "Ada", "board_1", "c1")
	h.addClient(context.Background(), a)
	h.handleMessage(a, submit(t, Operation{ID: "op1", Type: OpMainSet, ReferenceID: "r1"}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, h.Run(ctx))

	require.Len(t, saved, 1)
	require.NotNil(t, saved[0].board.MainImage)
	assert.Equal(t, "r1", *saved[0].board.MainImage)

	// registration after shutdown must not block
	h.Register(NewClient(h, nil, "u2", "Bo", "board_1", "c2"))
}

func TestLoadFailureClosesClient(t *testing.T) {
	h := NewHub(func(context.Context, string) (*document.Board, error) {
		return nil, errors.New("boom")
	}, nil)

	a := NewClient(h, nil, "u1", "Ada", "board_1", "c1")
	h.addClient(context.Background(), a)

	assert.Equal(t, []string{TypeError}, types(drain(t, a)))
	_, open := <-a.send
	assert.False(t, open)
	assert.Empty(t, h.rooms)
}

func TestPresenceRemovedReferenceDeselected(t *testing.T) {
	var saved []savedBoard
	h := newTestHub(&saved)
	ctx := context.Background()

	a := NewClient(h, nil, "u1", "Ada", "board_1", "c1")
	b := NewClient(h, nil, "u2", "Bo", "board_1", "c2")
	h.addClient(ctx, a)
	h.addClient(ctx, b)

	payload, err := json.Marshal(PresencePayload{Selection: []string{"r2"}})
	require.NoError(t, err)
	h.handleMessage(b, &Message{Type: TypePresenceUpdate, Payload: payload})
	drain(t, a)
	drain(t, b)

	h.handleMessage(a, submit(t, Operation{ID: "op1", Type: OpNodeRemove, ReferenceID: "r2"}))

	room, ok := h.roomOf(a)
	require.True(t, ok)
	p, ok := room.presence.Get("u2")
	require.True(t, ok)
	assert.Empty(t, p.Selection)
	assert.Equal(t, "Bo", p.DisplayName)
}
