package collab

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/coder/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/refboard/refboard/internal/typeid"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	maxMsgSize = 256 * 1024
	sendBuffer = 256

	// Cursor-only presence faster than this is dropped; a peer's cursor
	// does not need more than ~30 frames a second.
	presenceInterval = 33 * time.Millisecond
)

// Client is one websocket connection to a board room.
type Client struct {
	hub         *Hub
	conn        *websocket.Conn
	send        chan []byte
	UserID      string
	DisplayName string
	BoardID     string
	ClientID    string

	presenceEvery time.Duration
	lastCursor    time.Time
}

func NewClient(hub *Hub, conn *websocket.Conn, userID, displayName, boardID, clientID string) *Client {
	return &Client{
		hub:           hub,
		conn:          conn,
		send:          make(chan []byte, sendBuffer),
		UserID:        userID,
		DisplayName:   displayName,
		BoardID:       boardID,
		ClientID:      clientID,
		presenceEvery: presenceInterval,
	}
}

// Serve pumps the connection until either side goes away. The client is
// unregistered from the hub before Serve returns.
func (c *Client) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		defer c.hub.Unregister(c)
		return c.readLoop(gctx)
	})
	g.Go(func() error {
		defer cancel()
		return c.writeLoop(gctx)
	})

	err := g.Wait()
	c.conn.Close(websocket.StatusNormalClosure, "")
	return err
}

func (c *Client) readLoop(ctx context.Context) error {
	c.conn.SetReadLimit(maxMsgSize)

	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return nil
			}
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}

		msg, err := c.inbound(data, time.Now())
		if err != nil {
			slog.Warn("reject message", "error", err, "user", c.UserID)
			c.Send(newMessage(TypeError, ErrorPayload{Message: err.Error()}))
			continue
		}
		if msg != nil {
			c.hub.handleMessage(c, msg)
		}
	}
}

// inbound decodes one frame from the wire. It returns a nil message for
// frames that are valid but dropped.
func (c *Client) inbound(data []byte, now time.Time) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("invalid message: %w", err)
	}

	// never trust identity fields from the wire
	msg.UserID = c.UserID
	msg.ClientID = c.ClientID
	msg.BoardID = c.BoardID

	switch msg.Type {
	case TypePresenceUpdate:
		var p PresencePayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return nil, fmt.Errorf("invalid presence payload: %w", err)
		}
		if p.Selection == nil && p.Paradigm == "" {
			if now.Sub(c.lastCursor) < c.presenceEvery {
				return nil, nil
			}
			c.lastCursor = now
		}
		return &msg, nil

	case TypeOpSubmit:
		var submit OperationSubmitPayload
		if err := json.Unmarshal(msg.Payload, &submit); err != nil {
			return nil, fmt.Errorf("invalid operation payload: %w", err)
		}
		if submit.Operation.ID != "" {
			return &msg, nil
		}
		submit.Operation.ID = typeid.NewOpID()
		payload, err := json.Marshal(submit)
		if err != nil {
			return nil, fmt.Errorf("encode operation: %w", err)
		}
		msg.Payload = payload
		return &msg, nil

	default:
		return nil, fmt.Errorf("unsupported message type %q", msg.Type)
	}
}

func (c *Client) writeLoop(ctx context.Context) error {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				return nil
			}
			writeCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Write(writeCtx, websocket.MessageText, message)
			cancel()
			if err != nil {
				return fmt.Errorf("write: %w", err)
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return fmt.Errorf("ping: %w", err)
			}

		case <-ctx.Done():
			return nil
		}
	}
}

// Send queues a message without blocking. Messages to a client whose
// buffer is full are dropped.
func (c *Client) Send(msg *Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("marshal message", "error", err)
		return
	}

	select {
	case c.send <- data:
	default:
		slog.Warn("client send buffer full, dropping message", "user", c.UserID)
	}
}
