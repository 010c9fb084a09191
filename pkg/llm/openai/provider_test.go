package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"course-assistant-be/pkg/llm"
	"course-assistant-be/pkg/rag"
)

func sseServer(t *testing.T, chunks []string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		assert.Equal(t, true, body["stream"])

		w.Header().Set("Content-Type", "text/event-stream")
		flusher, _ := w.(http.Flusher)
		for _, c := range chunks {
			fmt.Fprintf(w, "data: %s\n\n", c)
			if flusher != nil {
				flusher.Flush()
			}
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
}

func contentChunk(text string) string {
	return fmt.Sprintf(`{"id":"c1","object":"chat.completion.chunk","model":"m","choices":[{"index":0,"delta":{"content":%q}}]}`, text)
}

func toolChunk(idx int, id, name, args string) string {
	return fmt.Sprintf(`{"id":"c1","object":"chat.completion.chunk","model":"m","choices":[{"index":0,"delta":{"tool_calls":[{"index":%d,"id":%q,"type":"function","function":{"name":%q,"arguments":%q}}]}}]}`,
		idx, id, name, args)
}

func TestOpenAIProvider_DecideAnswer(t *testing.T) {
	server := sseServer(t, []string{contentChunk("Hello"), contentChunk(", "), contentChunk("world")})
	defer server.Close()

	p := NewOpenAIProvider("test-key", server.URL, "test-model")

	decision, err := p.Decide(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "hi"}}, nil)
	require.NoError(t, err)
	require.True(t, decision.IsFinal())

	text, err := llm.Collect(decision.Answer)
	require.NoError(t, err)
	assert.Equal(t, "Hello, world", text)
}

func TestOpenAIProvider_DecideToolCalls(t *testing.T) {
	server := sseServer(t, []string{
		toolChunk(0, "call_a", "searchKnowledgeBase", `{"query":`),
		toolChunk(0, "", "", `"COM 2158"}`),
		toolChunk(1, "call_b", "listCourses", `{}`),
	})
	defer server.Close()

	p := NewOpenAIProvider("test-key", server.URL, "test-model")

	tools := []llm.ToolSchema{{Name: "searchKnowledgeBase", Parameters: json.RawMessage(`{"type":"object"}`)}}
	decision, err := p.Decide(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "COM 2158?"}}, tools)
	require.NoError(t, err)
	require.False(t, decision.IsFinal())
	require.Len(t, decision.ToolCalls, 2)

	assert.Equal(t, "call_a", decision.ToolCalls[0].ID)
	assert.Equal(t, "searchKnowledgeBase", decision.ToolCalls[0].Name)
	assert.JSONEq(t, `{"query":"COM 2158"}`, string(decision.ToolCalls[0].Arguments))
	assert.Equal(t, "listCourses", decision.ToolCalls[1].Name)
}

func TestOpenAIProvider_ToolCallsAfterContentWin(t *testing.T) {
	server := sseServer(t, []string{
		contentChunk("Let me look that up. "),
		toolChunk(0, "call_a", "searchKnowledgeBase", `{"query":"COM 2158"}`),
	})
	defer server.Close()

	p := NewOpenAIProvider("test-key", server.URL, "test-model")

	tools := []llm.ToolSchema{{Name: "searchKnowledgeBase", Parameters: json.RawMessage(`{"type":"object"}`)}}
	decision, err := p.Decide(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "COM 2158?"}}, tools)
	require.NoError(t, err)
	require.False(t, decision.IsFinal())
	require.Len(t, decision.ToolCalls, 1)
	assert.Equal(t, "searchKnowledgeBase", decision.ToolCalls[0].Name)
	assert.JSONEq(t, `{"query":"COM 2158"}`, string(decision.ToolCalls[0].Arguments))
}

func TestOpenAIProvider_ContentWithToolsOfferedIsReplayed(t *testing.T) {
	server := sseServer(t, []string{contentChunk("Hello"), contentChunk(", "), contentChunk("world")})
	defer server.Close()

	p := NewOpenAIProvider("test-key", server.URL, "test-model")

	tools := []llm.ToolSchema{{Name: "listCourses", Parameters: json.RawMessage(`{"type":"object"}`)}}
	decision, err := p.Decide(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "hi"}}, tools)
	require.NoError(t, err)
	require.True(t, decision.IsFinal())

	tok, err := decision.Answer.Recv()
	require.NoError(t, err)
	assert.Equal(t, "Hello", tok)

	rest, err := llm.Collect(decision.Answer)
	require.NoError(t, err)
	assert.Equal(t, ", world", rest)
}

func TestOpenAIProvider_APIErrorWrapsOracle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
	}))
	defer server.Close()

	p := NewOpenAIProvider("bad", server.URL, "test-model")

	_, err := p.Decide(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "hi"}}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, rag.ErrOracle))
}

func TestOpenAIProvider_CloseStopsStream(t *testing.T) {
	server := sseServer(t, []string{contentChunk("one "), contentChunk("two "), contentChunk("three")})
	defer server.Close()

	p := NewOpenAIProvider("test-key", server.URL, "test-model")

	decision, err := p.Decide(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "count"}}, nil)
	require.NoError(t, err)

	tok, err := decision.Answer.Recv()
	require.NoError(t, err)
	assert.Equal(t, "one ", tok)

	require.NoError(t, decision.Answer.Close())
	_, err = decision.Answer.Recv()
	assert.Error(t, err)
	assert.NoError(t, decision.Answer.Close(), "second close is a no-op")
}
