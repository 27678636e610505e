package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const writeWait = time.Second

// eventQueue bounds the events waiting for the broadcaster.
const eventQueue = 64

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// Event is one dispatched trigger as sent on the live feed.
type Event struct {
	Key     string    `json:"key"`
	Label   string    `json:"label"`
	At      time.Time `json:"at"`
	Session string    `json:"session"`
}

// EventHub fans trigger events out to WebSocket clients. Publish only
// queues; writes happen on the hub's broadcast goroutine.
type EventHub struct {
	clients   map[*websocket.Conn]bool
	mu        sync.RWMutex
	events    chan Event
	done      chan struct{}
	closeOnce sync.Once
	logger    zerolog.Logger
}

// NewEventHub creates an empty hub and starts its broadcaster.
func NewEventHub(logger zerolog.Logger) *EventHub {
	h := &EventHub{
		clients: make(map[*websocket.Conn]bool),
		events:  make(chan Event, eventQueue),
		done:    make(chan struct{}),
		logger:  logger.With().Str("component", "events").Logger(),
	}
	go h.broadcast()
	return h
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *EventHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// Publish queues e for every connected client and returns immediately.
// Events are dropped when the queue is full or the hub is closed.
func (h *EventHub) Publish(e Event) {
	select {
	case <-h.done:
		return
	default:
	}

	select {
	case h.events <- e:
	default:
		h.logger.Warn().Str("key", e.Key).Msg("Event queue full, dropping event")
	}
}

// broadcast writes queued events until the hub is closed. Clients that
// fail a write within writeWait are dropped.
func (h *EventHub) broadcast() {
	for {
		select {
		case <-h.done:
			return
		case e := <-h.events:
			msg, err := json.Marshal(e)
			if err != nil {
				continue
			}

			h.mu.RLock()
			conns := make([]*websocket.Conn, 0, len(h.clients))
			for conn := range h.clients {
				conns = append(conns, conn)
			}
			h.mu.RUnlock()

			for _, conn := range conns {
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
					h.logger.Debug().Err(err).Msg("Dropping event client")
					conn.Close()
					h.mu.Lock()
					delete(h.clients, conn)
					h.mu.Unlock()
				}
			}
		}
	}
}

// Clients returns the number of connected clients.
func (h *EventHub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close stops the broadcaster and disconnects every client.
func (h *EventHub) Close() {
	h.closeOnce.Do(func() { close(h.done) })

	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.clients {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(writeWait))
		conn.Close()
		delete(h.clients, conn)
	}
}
