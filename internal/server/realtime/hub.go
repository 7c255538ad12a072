package realtime

import (
	"errors"
	"sync"

	"github.com/gorilla/websocket"
)

// ErrHubClosed is returned when a connection arrives after CloseAll.
var ErrHubClosed = errors.New("realtime: hub closed")

// Gauge receives live connection counts. *metric.Registry satisfies it.
type Gauge interface {
	IncRealtime()
	DecRealtime()
}

// Hub tracks live connections.
type Hub struct {
	mu     sync.RWMutex
	conns  map[string]*Conn
	gauge  Gauge
	closed bool
}

// NewHub creates an empty Hub. gauge may be nil.
func NewHub(gauge Gauge) *Hub {
	return &Hub{
		conns: make(map[string]*Conn),
		gauge: gauge,
	}
}

func (h *Hub) add(c *Conn) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrHubClosed
	}
	h.conns[c.id] = c
	if h.gauge != nil {
		h.gauge.IncRealtime()
	}
	return nil
}

func (h *Hub) remove(c *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.conns[c.id]; !ok {
		return
	}
	delete(h.conns, c.id)
	if h.gauge != nil {
		h.gauge.DecRealtime()
	}
}

// Len returns the number of live connections.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Get returns the connection with the given ID.
func (h *Hub) Get(id string) (*Conn, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.conns[id]
	return c, ok
}

// Closed reports whether CloseAll has run.
func (h *Hub) Closed() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.closed
}

// snapshot copies the connection set so callers can write without holding
// the lock.
func (h *Hub) snapshot() []*Conn {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*Conn, 0, len(h.conns))
	for _, c := range h.conns {
		out = append(out, c)
	}
	return out
}

// Broadcast sends one message to every live connection and returns how
// many writes succeeded.
func (h *Hub) Broadcast(messageType int, data []byte) int {
	sent := 0
	for _, c := range h.snapshot() {
		if err := c.WriteMessage(messageType, data); err != nil {
			c.logger.Debug("broadcast write failed", "error", err)
			continue
		}
		sent++
	}
	return sent
}

// CloseAll refuses new connections and closes the live ones with
// CloseGoingAway.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	h.closed = true
	h.mu.Unlock()

	for _, c := range h.snapshot() {
		_ = c.Close(websocket.CloseGoingAway, "server shutting down")
	}
}
