package websocket

import (
	"sync"

	"course-assistant-be/internal/pkg/logger"

	"github.com/google/uuid"
)

// Hub tracks live chat sessions so shutdown can cancel their turns.
type Hub struct {
	sessions map[uuid.UUID]*Session
	mu       sync.RWMutex
	logger   logger.ILogger
}

func NewHub(log logger.ILogger) *Hub {
	return &Hub{
		sessions: make(map[uuid.UUID]*Session),
		logger:   log,
	}
}

func (h *Hub) register(s *Session) {
	h.mu.Lock()
	h.sessions[s.ID] = s
	count := len(h.sessions)
	h.mu.Unlock()
	h.logger.Debug("Hub", "Session registered", map[string]interface{}{"session_id": s.ID, "sessions": count})
}

func (h *Hub) unregister(s *Session) {
	h.mu.Lock()
	delete(h.sessions, s.ID)
	count := len(h.sessions)
	h.mu.Unlock()
	h.logger.Debug("Hub", "Session unregistered", map[string]interface{}{"session_id": s.ID, "sessions": count})
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// CloseAll cancels every running turn and closes the sockets.
func (h *Hub) CloseAll() {
	h.mu.RLock()
	sessions := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.mu.RUnlock()

	for _, s := range sessions {
		s.close()
	}
	if len(sessions) > 0 {
		h.logger.Info("Hub", "Closed chat sessions", map[string]interface{}{"sessions": len(sessions)})
	}
}
