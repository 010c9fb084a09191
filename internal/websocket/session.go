package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"course-assistant-be/internal/pkg/logger"
	"course-assistant-be/pkg/rag/orchestrator"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 256 * 1024
)

// Conn is the part of *websocket.Conn a session uses.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	SetReadLimit(limit int64)
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(appData string) error)
	Close() error
}

// TurnFunc starts one chat turn from a raw client frame.
type TurnFunc func(ctx context.Context, payload []byte) (<-chan orchestrator.Event, error)

// Session is one websocket connection. It runs at most one turn at a time;
// closing the socket cancels the turn in flight.
type Session struct {
	ID uuid.UUID

	hub    *Hub
	conn   Conn
	turn   TurnFunc
	send   chan []byte
	busy   atomic.Bool
	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
	logger logger.ILogger
}

// ServeChat blocks until the peer disconnects.
func ServeChat(hub *Hub, conn Conn, turn TurnFunc, log logger.ILogger) {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		ID:     uuid.New(),
		hub:    hub,
		conn:   conn,
		turn:   turn,
		send:   make(chan []byte, 64),
		ctx:    ctx,
		cancel: cancel,
		logger: log,
	}
	hub.register(s)

	go s.writePump()
	s.readPump()
}

func (s *Session) close() {
	s.once.Do(func() {
		s.cancel()
		_ = s.conn.Close()
	})
}

// readPump reads turn requests until the connection fails.
func (s *Session) readPump() {
	defer func() {
		s.hub.unregister(s)
		s.close()
	}()
	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, payload, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("WS", "Unexpected close", map[string]interface{}{"session_id": s.ID, "error": err.Error()})
			}
			return
		}
		_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))

		if !s.busy.CompareAndSwap(false, true) {
			s.enqueue(orchestrator.Event{Type: orchestrator.EventError, ErrorText: "A response is already being generated"})
			continue
		}
		go s.runTurn(payload)
	}
}

func (s *Session) runTurn(payload []byte) {
	defer s.busy.Store(false)

	events, err := s.turn(s.ctx, payload)
	if err != nil {
		s.logger.Warn("WS", "Rejected chat request", map[string]interface{}{"session_id": s.ID, "error": err.Error()})
		s.enqueue(orchestrator.Event{Type: orchestrator.EventError, ErrorText: orchestrator.GenericErrorText})
		return
	}
	for event := range events {
		if !s.enqueue(event) {
			// Keep draining so the producer observes cancellation and exits.
			for range events {
			}
			return
		}
	}
}

// enqueue reports false once the session is closed.
func (s *Session) enqueue(event orchestrator.Event) bool {
	data, err := json.Marshal(event)
	if err != nil {
		return false
	}
	select {
	case s.send <- data:
		return true
	case <-s.ctx.Done():
		return false
	}
}

func (s *Session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.close()
	}()

	for {
		select {
		case <-s.ctx.Done():
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = s.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case message := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
