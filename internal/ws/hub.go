package ws

import (
	"sync"

	socketio "github.com/googollee/go-socket.io"
	"github.com/rs/zerolog/log"
)

// Hub tracks live socket connections and implements game.Publisher on top
// of them.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]socketio.Conn
}

func NewHub() *Hub {
	return &Hub{conns: make(map[string]socketio.Conn)}
}

func (h *Hub) add(c socketio.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[c.ID()] = c
}

func (h *Hub) remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, id)
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

func (h *Hub) Publish(connID string, event string, payload any) {
	h.mu.RLock()
	c := h.conns[connID]
	h.mu.RUnlock()
	if c == nil {
		log.Debug().Str("sid", connID).Str("event", event).Msg("publish to unknown connection")
		return
	}
	c.Emit(event, payload)
}
