// Package orchestrator runs one chat turn: it asks the oracle for a decision,
// executes requested tools, and streams the final answer. All looping and the
// round-trip cap live here, never in the oracle.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"course-assistant-be/pkg/llm"
	"course-assistant-be/pkg/metrics"
)

const DefaultMaxRoundTrips = 2

// ToolExecutor is satisfied by tools.Registry.
type ToolExecutor interface {
	Schemas() []llm.ToolSchema
	Execute(ctx context.Context, call llm.ToolCall) (string, error)
}

type Logger interface {
	Warn(module, message string, details map[string]interface{})
	Error(module, message string, details map[string]interface{})
}

type nopLogger struct{}

func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}

// Result summarizes a finished turn.
type Result struct {
	RoundTrips   int
	ToolCalls    int
	FinishReason string
	Answer       string
}

type Orchestrator struct {
	oracle        llm.Oracle
	tools         ToolExecutor
	systemPrompt  string
	maxRoundTrips int
	oracleOptions []llm.Option
	logger        Logger
}

type Option func(*Orchestrator)

func WithMaxRoundTrips(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.maxRoundTrips = n
		}
	}
}

func WithLogger(l Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

func WithOracleOptions(opts ...llm.Option) Option {
	return func(o *Orchestrator) {
		o.oracleOptions = append(o.oracleOptions, opts...)
	}
}

func New(oracle llm.Oracle, tools ToolExecutor, systemPrompt string, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		oracle:        oracle,
		tools:         tools,
		systemPrompt:  systemPrompt,
		maxRoundTrips: DefaultMaxRoundTrips,
		logger:        nopLogger{},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run drives one user turn and delivers events to sink. It returns an error for
// oracle failures, sink failures and cancellation; tool failures are not errors.
func (o *Orchestrator) Run(ctx context.Context, history []llm.Message, sink EventSink) (*Result, error) {
	messages := make([]llm.Message, 0, len(history)+1)
	if o.systemPrompt != "" {
		messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: o.systemPrompt})
	}
	messages = append(messages, history...)

	result := &Result{}
	var toolOutputs []string

	for result.RoundTrips < o.maxRoundTrips {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		result.RoundTrips++
		decision, err := o.oracle.Decide(ctx, messages, o.tools.Schemas(), o.oracleOptions...)
		if err != nil {
			return result, fmt.Errorf("oracle round-trip %d: %w", result.RoundTrips, err)
		}

		if decision.IsFinal() {
			result.FinishReason = FinishStop
			return o.answer(ctx, decision.Answer, sink, result)
		}
		if len(decision.ToolCalls) == 0 {
			return result, errors.New("oracle returned neither tool calls nor an answer")
		}

		messages = append(messages, llm.Message{Role: llm.RoleAssistant, ToolCalls: decision.ToolCalls})
		for _, call := range decision.ToolCalls {
			if err := ctx.Err(); err != nil {
				return result, err
			}
			if err := sink.Send(Event{Type: EventToolCall, ToolCallId: call.ID, ToolName: call.Name, Input: call.Arguments}); err != nil {
				return result, err
			}

			output := o.execute(ctx, call)
			result.ToolCalls++
			toolOutputs = append(toolOutputs, output)

			if err := sink.Send(Event{Type: EventToolResult, ToolCallId: call.ID, ToolName: call.Name, Output: output}); err != nil {
				return result, err
			}
			messages = append(messages, llm.Message{
				Role:       llm.RoleTool,
				Content:    output,
				ToolCallID: call.ID,
				Name:       call.Name,
			})
		}
	}

	// Cap reached with tool output and no answer: answer with what the tools produced.
	result.FinishReason = FinishTurnCap
	return o.answer(ctx, llm.NewStaticStream(strings.Join(toolOutputs, "\n\n")), sink, result)
}

// execute never fails: errors and panics become the tool's textual result.
func (o *Orchestrator) execute(ctx context.Context, call llm.ToolCall) (output string) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("ORCHESTRATOR", "Tool panicked", map[string]interface{}{
				"tool":  call.Name,
				"panic": fmt.Sprint(r),
			})
			metrics.ToolCallsTotal.WithLabelValues(call.Name, "panic").Inc()
			output = fmt.Sprintf("Error: tool %s failed unexpectedly", call.Name)
		}
	}()

	out, err := o.tools.Execute(ctx, call)
	if err != nil {
		details := map[string]interface{}{"tool": call.Name, "error": err.Error()}
		if cause := errors.Unwrap(err); cause != nil {
			details["cause"] = cause.Error()
		}
		o.logger.Warn("ORCHESTRATOR", "Tool execution failed", details)
		metrics.ToolCallsTotal.WithLabelValues(call.Name, "error").Inc()
		return "Error: " + err.Error()
	}
	metrics.ToolCallsTotal.WithLabelValues(call.Name, "success").Inc()
	return out
}

// answer relays the stream token by token. Cancellation closes the stream so
// a blocked Recv returns promptly.
func (o *Orchestrator) answer(ctx context.Context, stream llm.TokenStream, sink EventSink, result *Result) (*Result, error) {
	defer stream.Close()
	stop := context.AfterFunc(ctx, func() { _ = stream.Close() })
	defer stop()

	var b strings.Builder
	for {
		tok, err := stream.Recv()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return result, ctxErr
			}
			if errors.Is(err, io.EOF) {
				break
			}
			return result, fmt.Errorf("answer stream: %w", err)
		}
		if tok == "" {
			continue
		}
		b.WriteString(tok)
		if err := sink.Send(Event{Type: EventTextDelta, Delta: tok}); err != nil {
			return result, err
		}
	}

	result.Answer = b.String()
	if err := sink.Send(Event{Type: EventFinish, FinishReason: result.FinishReason}); err != nil {
		return result, err
	}
	return result, nil
}

// Stream runs the turn on a producer goroutine. The channel closes when the
// turn ends; cancelling ctx stops the producer and releases the oracle stream.
// A failure is delivered as one EventError carrying only GenericErrorText.
func (o *Orchestrator) Stream(ctx context.Context, history []llm.Message) <-chan Event {
	ch := make(chan Event)
	go func() {
		defer close(ch)
		result, err := o.Run(ctx, history, chanSink{ctx: ctx, ch: ch})
		switch {
		case err == nil:
			metrics.ChatTurnsTotal.WithLabelValues(outcome(result)).Inc()
		case ctx.Err() != nil:
			metrics.ChatTurnsTotal.WithLabelValues("cancelled").Inc()
		default:
			metrics.ChatTurnsTotal.WithLabelValues("error").Inc()
			o.logger.Error("ORCHESTRATOR", "Chat turn failed", map[string]interface{}{"error": err.Error()})
			select {
			case ch <- Event{Type: EventError, ErrorText: GenericErrorText}:
			case <-ctx.Done():
			}
		}
	}()
	return ch
}

func outcome(r *Result) string {
	if r.FinishReason == FinishTurnCap {
		return "turn_cap"
	}
	return "answered"
}
