package orchestrator

import (
	"context"
	"encoding/json"
)

type EventType string

const (
	EventToolCall   EventType = "tool-call"
	EventToolResult EventType = "tool-result"
	EventTextDelta  EventType = "text-delta"
	EventFinish     EventType = "finish"
	EventError      EventType = "error"
)

// Finish reasons.
const (
	FinishStop    = "stop"
	FinishTurnCap = "turn-cap"
)

// GenericErrorText is the only error detail a client ever sees.
const GenericErrorText = "Failed to stream chat completion"

// Event is one frame of a streamed chat turn.
type Event struct {
	Type         EventType       `json:"type"`
	ToolCallId   string          `json:"toolCallId,omitempty"`
	ToolName     string          `json:"toolName,omitempty"`
	Input        json.RawMessage `json:"input,omitempty"`
	Output       string          `json:"output,omitempty"`
	Delta        string          `json:"delta,omitempty"`
	FinishReason string          `json:"finishReason,omitempty"`
	ErrorText    string          `json:"errorText,omitempty"`
}

// EventSink receives events in order. A Send error aborts the turn.
type EventSink interface {
	Send(event Event) error
}

// SinkFunc adapts a function to EventSink.
type SinkFunc func(Event) error

func (f SinkFunc) Send(event Event) error { return f(event) }

// chanSink hands events to a consumer goroutine and gives up once ctx is done.
type chanSink struct {
	ctx context.Context
	ch  chan<- Event
}

func (s chanSink) Send(event Event) error {
	select {
	case s.ch <- event:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	}
}
