package llm

import (
	"context"
	"encoding/json"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role       string // "user", "assistant", "system", "tool"
	Content    string
	ToolCalls  []ToolCall // assistant turns that requested tools
	ToolCallID string     // tool turns: the call this result answers
	Name       string     // tool turns: tool name
}

// ToolSchema declares a callable tool. Parameters is a JSON Schema object.
type ToolSchema struct {
	Name        string
	Description string
	Parameters  json.RawMessage
}

// ToolCall is one tool invocation requested by the model.
type ToolCall struct {
	ID        string
	Name      string
	Arguments json.RawMessage
}

// Decision is what the model returns for one round-trip: either tool calls
// or a final answer stream. Exactly one of the two is set.
type Decision struct {
	ToolCalls []ToolCall
	Answer    TokenStream
}

// IsFinal reports whether the model answered instead of requesting tools.
func (d *Decision) IsFinal() bool {
	return d != nil && d.Answer != nil
}

// TokenStream yields answer tokens. Recv returns io.EOF once the answer is
// complete. Close cancels generation and releases the underlying request; it
// is safe to call more than once and after EOF.
type TokenStream interface {
	Recv() (string, error)
	Close() error
}

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string // Override default model
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// ApplyOptions resolves options over the defaults.
func ApplyOptions(opts ...Option) *Options {
	options := &Options{
		Temperature: 0.3,
	}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// Oracle is the decision-making language model. It never loops on its own:
// callers own the round-trip budget.
type Oracle interface {
	Decide(ctx context.Context, history []Message, tools []ToolSchema, options ...Option) (*Decision, error)
}
