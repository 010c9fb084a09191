package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"course-assistant-be/internal/pkg/logger"
	"course-assistant-be/pkg/rag/orchestrator"

	"github.com/gofiber/websocket/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	incoming chan []byte
	written  chan []byte
	closed   chan struct{}
	once     sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		incoming: make(chan []byte, 4),
		written:  make(chan []byte, 64),
		closed:   make(chan struct{}),
	}
}

func (c *fakeConn) ReadMessage() (int, []byte, error) {
	select {
	case p := <-c.incoming:
		return websocket.TextMessage, p, nil
	case <-c.closed:
		return 0, nil, errors.New("use of closed connection")
	}
}

func (c *fakeConn) WriteMessage(messageType int, data []byte) error {
	if messageType != websocket.TextMessage {
		return nil
	}
	select {
	case <-c.closed:
		return errors.New("use of closed connection")
	case c.written <- data:
		return nil
	}
}

func (c *fakeConn) SetReadLimit(int64)                {}
func (c *fakeConn) SetReadDeadline(time.Time) error   { return nil }
func (c *fakeConn) SetWriteDeadline(time.Time) error  { return nil }
func (c *fakeConn) SetPongHandler(func(string) error) {}
func (c *fakeConn) Close() error                      { c.once.Do(func() { close(c.closed) }); return nil }

func readEvent(t *testing.T, c *fakeConn) orchestrator.Event {
	t.Helper()
	select {
	case data := <-c.written:
		var e orchestrator.Event
		require.NoError(t, json.Unmarshal(data, &e))
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("no frame written")
		return orchestrator.Event{}
	}
}

func TestServeChat_StreamsTurnEvents(t *testing.T) {
	hub := NewHub(logger.NewNopLogger())
	conn := newFakeConn()
	turn := func(ctx context.Context, payload []byte) (<-chan orchestrator.Event, error) {
		ch := make(chan orchestrator.Event, 2)
		ch <- orchestrator.Event{Type: orchestrator.EventTextDelta, Delta: "Hi"}
		ch <- orchestrator.Event{Type: orchestrator.EventFinish, FinishReason: orchestrator.FinishStop}
		close(ch)
		return ch, nil
	}

	done := make(chan struct{})
	go func() {
		ServeChat(hub, conn, turn, logger.NewNopLogger())
		close(done)
	}()

	conn.incoming <- []byte(`{"messages":[{"role":"user","content":"hello"}]}`)

	assert.Equal(t, "Hi", readEvent(t, conn).Delta)
	assert.Equal(t, orchestrator.EventFinish, readEvent(t, conn).Type)

	assert.Eventually(t, func() bool { return hub.Len() == 1 }, time.Second, 10*time.Millisecond)
	_ = conn.Close()
	<-done
	assert.Equal(t, 0, hub.Len())
}

func TestServeChat_RejectedRequestSendsGenericError(t *testing.T) {
	hub := NewHub(logger.NewNopLogger())
	conn := newFakeConn()
	turn := func(ctx context.Context, payload []byte) (<-chan orchestrator.Event, error) {
		return nil, errors.New("invalid body: unexpected EOF")
	}

	go ServeChat(hub, conn, turn, logger.NewNopLogger())
	conn.incoming <- []byte(`{`)

	e := readEvent(t, conn)
	assert.Equal(t, orchestrator.EventError, e.Type)
	assert.Equal(t, orchestrator.GenericErrorText, e.ErrorText)
	_ = conn.Close()
}

func TestHub_CloseAllCancelsRunningTurn(t *testing.T) {
	hub := NewHub(logger.NewNopLogger())
	conn := newFakeConn()
	started := make(chan struct{})
	cancelled := make(chan struct{})
	turn := func(ctx context.Context, payload []byte) (<-chan orchestrator.Event, error) {
		close(started)
		ch := make(chan orchestrator.Event)
		go func() {
			defer close(ch)
			<-ctx.Done()
			close(cancelled)
		}()
		return ch, nil
	}

	go ServeChat(hub, conn, turn, logger.NewNopLogger())
	conn.incoming <- []byte(`{}`)
	<-started
	require.Equal(t, 1, hub.Len())

	hub.CloseAll()

	select {
	case <-cancelled:
	case <-time.After(2 * time.Second):
		t.Fatal("turn was not cancelled")
	}
}
