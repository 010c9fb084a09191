package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	openai "github.com/sashabaranov/go-openai"

	"course-assistant-be/pkg/llm"
	"course-assistant-be/pkg/metrics"
	"course-assistant-be/pkg/rag"
)

const providerName = "openai"

// OpenAIProvider talks to any OpenAI-compatible chat completions API.
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

// Ensure OpenAIProvider implements Oracle
var _ llm.Oracle = &OpenAIProvider{}

func NewOpenAIProvider(apiKey, baseURL, model string) *OpenAIProvider {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIProvider{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// Decide sends one streaming request. Without tools the first content delta
// hands the live stream to the caller. With tools the model may write content
// before its tool calls, so the whole response is read first: any tool call
// wins, otherwise the buffered content is replayed as the answer.
func (p *OpenAIProvider) Decide(ctx context.Context, history []llm.Message, tools []llm.ToolSchema, opts ...llm.Option) (*llm.Decision, error) {
	options := llm.ApplyOptions(opts...)
	model := p.model
	if options.Model != "" {
		model = options.Model
	}

	req := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    toOpenAIMessages(history),
		Tools:       toOpenAITools(tools),
		Temperature: float32(options.Temperature),
		Stream:      true,
	}
	if options.MaxTokens > 0 {
		req.MaxTokens = options.MaxTokens
	}

	streamCtx, cancel := context.WithCancel(ctx)
	stream, err := p.client.CreateChatCompletionStream(streamCtx, req)
	if err != nil {
		cancel()
		metrics.OracleRequestsTotal.WithLabelValues(providerName, "error").Inc()
		return nil, parseAPIError(err)
	}

	calls := map[int]*llm.ToolCall{}
	args := map[int]*strings.Builder{}
	var content []string
	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			_ = stream.Close()
			cancel()
			metrics.OracleRequestsTotal.WithLabelValues(providerName, "error").Inc()
			return nil, parseAPIError(err)
		}
		if len(resp.Choices) == 0 {
			continue
		}
		delta := resp.Choices[0].Delta

		if delta.Content != "" {
			if len(tools) == 0 {
				metrics.OracleRequestsTotal.WithLabelValues(providerName, "answer").Inc()
				return &llm.Decision{Answer: &answerStream{
					stream:  stream,
					cancel:  cancel,
					pending: delta.Content,
				}}, nil
			}
			content = append(content, delta.Content)
		}

		for _, tc := range delta.ToolCalls {
			idx := 0
			if tc.Index != nil {
				idx = *tc.Index
			}
			call, ok := calls[idx]
			if !ok {
				call = &llm.ToolCall{}
				calls[idx] = call
				args[idx] = &strings.Builder{}
			}
			if tc.ID != "" {
				call.ID = tc.ID
			}
			if tc.Function.Name != "" {
				call.Name = tc.Function.Name
			}
			args[idx].WriteString(tc.Function.Arguments)
		}
	}
	_ = stream.Close()
	cancel()

	if len(calls) == 0 {
		metrics.OracleRequestsTotal.WithLabelValues(providerName, "answer").Inc()
		return &llm.Decision{Answer: llm.NewReplayStream(content)}, nil
	}

	indexes := make([]int, 0, len(calls))
	for idx := range calls {
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)

	decision := &llm.Decision{ToolCalls: make([]llm.ToolCall, 0, len(indexes))}
	for _, idx := range indexes {
		call := *calls[idx]
		raw := strings.TrimSpace(args[idx].String())
		if raw == "" {
			raw = "{}"
		}
		call.Arguments = json.RawMessage(raw)
		if call.ID == "" {
			call.ID = fmt.Sprintf("call_%d", idx)
		}
		decision.ToolCalls = append(decision.ToolCalls, call)
	}
	metrics.OracleRequestsTotal.WithLabelValues(providerName, "tool_calls").Inc()
	return decision, nil
}

// answerStream yields content deltas from a live completion stream.
type answerStream struct {
	mu      sync.Mutex
	stream  *openai.ChatCompletionStream
	cancel  context.CancelFunc
	pending string
	closed  bool
}

func (s *answerStream) Recv() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", io.EOF
	}
	if s.pending != "" {
		tok := s.pending
		s.pending = ""
		return tok, nil
	}
	for {
		resp, err := s.stream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return "", io.EOF
			}
			return "", parseAPIError(err)
		}
		if len(resp.Choices) == 0 || resp.Choices[0].Delta.Content == "" {
			continue
		}
		return resp.Choices[0].Delta.Content, nil
	}
}

func (s *answerStream) Close() error {
	s.cancel()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.stream.Close()
}

func toOpenAIMessages(history []llm.Message) []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, 0, len(history))
	for _, msg := range history {
		m := openai.ChatCompletionMessage{
			Role:       msg.Role,
			Content:    msg.Content,
			ToolCallID: msg.ToolCallID,
			Name:       msg.Name,
		}
		for _, call := range msg.ToolCalls {
			m.ToolCalls = append(m.ToolCalls, openai.ToolCall{
				ID:   call.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      call.Name,
					Arguments: string(call.Arguments),
				},
			})
		}
		messages = append(messages, m)
	}
	return messages
}

func toOpenAITools(tools []llm.ToolSchema) []openai.Tool {
	if len(tools) == 0 {
		return nil
	}
	out := make([]openai.Tool, 0, len(tools))
	for _, tool := range tools {
		out = append(out, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  tool.Parameters,
			},
		})
	}
	return out
}

// parseAPIError keeps the status code and provider message but always wraps ErrOracle.
func parseAPIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("chat API error %d: %s: %w", apiErr.HTTPStatusCode, apiErr.Message, rag.ErrOracle)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("chat API error %d: %s: %w", reqErr.HTTPStatusCode, string(reqErr.Body), rag.ErrOracle)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("chat request: %w", err)
	}
	return fmt.Errorf("chat request failed: %v: %w", err, rag.ErrOracle)
}
