// Package feed pushes resolved balls to live subscribers: WebSocket clients
// watching a match and an optional Redis stream.
package feed

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/okian/cricksim/internal/domain/model"
	"github.com/okian/cricksim/pkg/logger"
	"github.com/okian/cricksim/pkg/metrics"
)

// Message types sent to clients.
const (
	TypeBall     = "ball"
	TypeComplete = "complete"
)

// Message is the frame written to WebSocket clients.
type Message struct {
	Type    string          `json:"type"`
	Payload model.BallEvent `json:"payload"`
	TS      time.Time       `json:"ts"`
}

// Hub tracks subscribers per match and broadcasts ball events to them. Run
// must be running for Register, Unregister and Publish to make progress.
type Hub struct {
	clients map[string]map[*Client]struct{}

	broadcast  chan model.BallEvent
	register   chan *Client
	unregister chan *Client
	count      chan chan int
	done       chan struct{}

	upgrader websocket.Upgrader
	log      logger.Logger
}

// NewHub creates a hub. A nil allowOrigin accepts every origin.
func NewHub(allowOrigin func(r *http.Request) bool) *Hub {
	if allowOrigin == nil {
		allowOrigin = func(*http.Request) bool { return true }
	}
	return &Hub{
		clients:    make(map[string]map[*Client]struct{}),
		broadcast:  make(chan model.BallEvent, 1000),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		count:      make(chan chan int),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     allowOrigin,
		},
		log: logger.Get().Named("feed"),
	}
}

// Run owns the subscriber map until ctx is cancelled, then disconnects everyone.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for _, set := range h.clients {
				for c := range set {
					c.close()
				}
			}
			h.clients = map[string]map[*Client]struct{}{}
			metrics.UpdateFeedClients(0)
			return

		case c := <-h.register:
			set, ok := h.clients[c.MatchID]
			if !ok {
				set = make(map[*Client]struct{})
				h.clients[c.MatchID] = set
			}
			set[c] = struct{}{}
			metrics.UpdateFeedClients(h.total())

		case c := <-h.unregister:
			h.remove(c)

		case e := <-h.broadcast:
			h.fanOut(e)

		case reply := <-h.count:
			reply <- h.total()
		}
	}
}

func (h *Hub) remove(c *Client) {
	set, ok := h.clients[c.MatchID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.MatchID)
	}
	c.close()
	metrics.UpdateFeedClients(h.total())
}

func (h *Hub) fanOut(e model.BallEvent) {
	m := Message{Type: TypeBall, Payload: e, TS: time.Now().UTC()}
	if e.Complete {
		m.Type = TypeComplete
	}
	for c := range h.clients[e.MatchID] {
		if !c.trySend(m) {
			h.log.Warn(context.Background(), "feed client too slow, disconnecting",
				logger.String("client_id", c.ID), logger.String("match_id", c.MatchID))
			h.remove(c)
		}
	}
}

func (h *Hub) total() int {
	n := 0
	for _, set := range h.clients {
		n += len(set)
	}
	return n
}

// Register adds a client. Once the hub has stopped the client is closed instead.
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
		c.close()
	}
}

// Unregister removes a client and closes its send buffer.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Clients returns the number of connected subscribers.
func (h *Hub) Clients(ctx context.Context) int {
	reply := make(chan int, 1)
	select {
	case h.count <- reply:
		return <-reply
	case <-h.done:
		return 0
	case <-ctx.Done():
		return 0
	}
}

// Name implements worker.Sink.
func (h *Hub) Name() string { return "websocket" }

// Publish implements worker.Sink. A full broadcast buffer drops the event.
func (h *Hub) Publish(ctx context.Context, e model.BallEvent) error {
	select {
	case h.broadcast <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-h.done:
		return ErrStopped
	default:
		return ErrBufferFull
	}
}

// Serve upgrades the request and streams the match's balls. It blocks until
// the peer leaves, ctx ends or the hub stops.
func (h *Hub) Serve(ctx context.Context, w http.ResponseWriter, r *http.Request, matchID string) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader has already replied
		return errors.Join(ErrUpgrade, err)
	}
	c := newClient(uuid.NewString(), matchID, conn, h)
	h.Register(c)
	h.log.Debug(logger.WithMatchID(ctx, matchID), "feed client connected", logger.String("client_id", c.ID))

	go c.writePump(ctx)
	c.readPump(ctx)
	return nil
}
