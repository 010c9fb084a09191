package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"course-assistant-be/pkg/llm"
	"course-assistant-be/pkg/metrics"
	"course-assistant-be/pkg/rag"
)

const providerName = "ollama"

type OllamaProvider struct {
	BaseURL   string
	ModelName string
	Client    *http.Client
}

// Ensure OllamaProvider implements Oracle
var _ llm.Oracle = &OllamaProvider{}

func NewOllamaProvider(baseURL, modelName string) *OllamaProvider {
	return &OllamaProvider{
		BaseURL:   baseURL,
		ModelName: modelName,
		Client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// --- Request/Response structs (Internal to this package) ---

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Tools    []ollamaTool    `json:"tools,omitempty"`
	Stream   bool            `json:"stream"`
	Options  *ollamaOptions  `json:"options,omitempty"`
}

type ollamaMessage struct {
	Role      string           `json:"role"`
	Content   string           `json:"content"`
	ToolCalls []ollamaToolCall `json:"tool_calls,omitempty"`
	ToolName  string           `json:"tool_name,omitempty"`
}

type ollamaTool struct {
	Type     string         `json:"type"`
	Function ollamaFunction `json:"function"`
}

type ollamaFunction struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

type ollamaToolCall struct {
	Function struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	} `json:"function"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type ollamaChatResponse struct {
	Model   string        `json:"model"`
	Message ollamaMessage `json:"message"`
	Done    bool          `json:"done"`
	Error   string        `json:"error,omitempty"`
}

// --- Interface Implementation ---

// Decide streams /api/chat. Ollama emits tool calls as complete objects, so
// the first line carrying either tool calls or content settles the decision.
func (o *OllamaProvider) Decide(ctx context.Context, history []llm.Message, tools []llm.ToolSchema, opts ...llm.Option) (*llm.Decision, error) {
	options := llm.ApplyOptions(opts...)

	model := o.ModelName
	if options.Model != "" {
		model = options.Model
	}

	reqPayload := ollamaChatRequest{
		Model:    model,
		Messages: toOllamaMessages(history),
		Tools:    toOllamaTools(tools),
		Stream:   true,
		Options: &ollamaOptions{
			Temperature: options.Temperature,
		},
	}
	if options.MaxTokens > 0 {
		reqPayload.Options.NumPredict = options.MaxTokens
	}

	payloadBytes, err := json.Marshal(reqPayload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	streamCtx, cancel := context.WithCancel(ctx)
	req, err := http.NewRequestWithContext(streamCtx, http.MethodPost, o.BaseURL+"/api/chat", bytes.NewBuffer(payloadBytes))
	if err != nil {
		cancel()
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.Client.Do(req)
	if err != nil {
		cancel()
		metrics.OracleRequestsTotal.WithLabelValues(providerName, "error").Inc()
		if ctx.Err() != nil {
			return nil, fmt.Errorf("ollama request: %w", ctx.Err())
		}
		return nil, fmt.Errorf("ollama request failed: %v: %w", err, rag.ErrOracle)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		cancel()
		metrics.OracleRequestsTotal.WithLabelValues(providerName, "error").Inc()
		return nil, fmt.Errorf("ollama error: status %d, body: %s: %w", resp.StatusCode, string(body), rag.ErrOracle)
	}

	stream := &answerStream{
		body:    resp.Body,
		scanner: bufio.NewScanner(resp.Body),
		cancel:  cancel,
	}
	stream.scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		line, err := stream.next()
		if err != nil {
			_ = stream.Close()
			if errors.Is(err, io.EOF) {
				metrics.OracleRequestsTotal.WithLabelValues(providerName, "answer").Inc()
				return &llm.Decision{Answer: llm.NewStaticStream("")}, nil
			}
			metrics.OracleRequestsTotal.WithLabelValues(providerName, "error").Inc()
			return nil, err
		}

		if len(line.Message.ToolCalls) > 0 {
			_ = stream.Close()
			metrics.OracleRequestsTotal.WithLabelValues(providerName, "tool_calls").Inc()
			return &llm.Decision{ToolCalls: fromOllamaToolCalls(line.Message.ToolCalls)}, nil
		}
		if line.Message.Content != "" {
			stream.pending = line.Message.Content
			stream.done = line.Done
			metrics.OracleRequestsTotal.WithLabelValues(providerName, "answer").Inc()
			return &llm.Decision{Answer: stream}, nil
		}
		if line.Done {
			_ = stream.Close()
			metrics.OracleRequestsTotal.WithLabelValues(providerName, "answer").Inc()
			return &llm.Decision{Answer: llm.NewStaticStream("")}, nil
		}
	}
}

// answerStream reads NDJSON lines from /api/chat.
type answerStream struct {
	mu      sync.Mutex
	body    io.ReadCloser
	scanner *bufio.Scanner
	cancel  context.CancelFunc
	pending string
	done    bool
	closed  bool
}

func (s *answerStream) next() (*ollamaChatResponse, error) {
	for s.scanner.Scan() {
		raw := bytes.TrimSpace(s.scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		var line ollamaChatResponse
		if err := json.Unmarshal(raw, &line); err != nil {
			return nil, fmt.Errorf("unmarshal response: %w", err)
		}
		if line.Error != "" {
			return nil, fmt.Errorf("ollama error: %s: %w", line.Error, rag.ErrOracle)
		}
		return &line, nil
	}
	if err := s.scanner.Err(); err != nil {
		return nil, fmt.Errorf("read stream: %v: %w", err, rag.ErrOracle)
	}
	return nil, io.EOF
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
	for !s.done {
		line, err := s.next()
		if err != nil {
			return "", err
		}
		s.done = line.Done
		if line.Message.Content != "" {
			return line.Message.Content, nil
		}
	}
	return "", io.EOF
}

func (s *answerStream) Close() error {
	s.cancel()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.body.Close()
}

func toOllamaMessages(history []llm.Message) []ollamaMessage {
	out := make([]ollamaMessage, 0, len(history))
	for _, msg := range history {
		role := msg.Role
		if role == "model" {
			role = llm.RoleAssistant
		}
		m := ollamaMessage{Role: role, Content: msg.Content, ToolName: msg.Name}
		for _, call := range msg.ToolCalls {
			var tc ollamaToolCall
			tc.Function.Name = call.Name
			tc.Function.Arguments = call.Arguments
			m.ToolCalls = append(m.ToolCalls, tc)
		}
		out = append(out, m)
	}
	return out
}

func toOllamaTools(tools []llm.ToolSchema) []ollamaTool {
	if len(tools) == 0 {
		return nil
	}
	out := make([]ollamaTool, 0, len(tools))
	for _, t := range tools {
		out = append(out, ollamaTool{
			Type: "function",
			Function: ollamaFunction{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}
	return out
}

func fromOllamaToolCalls(calls []ollamaToolCall) []llm.ToolCall {
	out := make([]llm.ToolCall, 0, len(calls))
	for i, c := range calls {
		args := c.Function.Arguments
		if len(args) == 0 {
			args = json.RawMessage("{}")
		}
		out = append(out, llm.ToolCall{
			ID:        fmt.Sprintf("call_%d", i),
			Name:      c.Function.Name,
			Arguments: args,
		})
	}
	return out
}
