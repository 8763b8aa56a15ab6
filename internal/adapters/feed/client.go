package feed

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/okian/cricksim/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBufferSize = 256
)

// Client is one WebSocket subscriber of a match.
type Client struct {
	ID      string
	MatchID string

	conn *websocket.Conn
	send chan Message
	hub  *Hub

	closeOnce sync.Once
	log       logger.Logger
}

func newClient(id, matchID string, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		ID:      id,
		MatchID: matchID,
		conn:    conn,
		send:    make(chan Message, sendBufferSize),
		hub:     hub,
		log:     hub.log,
	}
}

// trySend queues a message without blocking. False means the client is too slow.
func (c *Client) trySend(m Message) bool {
	select {
	case c.send <- m:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() { close(c.send) })
}

// readPump discards client frames; it exists to process pongs and notice
// the peer going away.
func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if ctx.Err() != nil {
			return
		}
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debug(ctx, "feed client closed", logger.String("client_id", c.ID), logger.Error(err))
			}
			return
		}
	}
}

func (c *Client) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case m, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(m); err != nil {
				c.log.Debug(ctx, "feed write failed", logger.String("client_id", c.ID), logger.Error(err))
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
