package embedding

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"course-assistant-be/pkg/rag"
)

const defaultGeminiEmbeddingModel = "text-embedding-004"

type GeminiProvider struct {
	client *genai.Client
	model  string
}

func NewGeminiProvider(ctx context.Context, apiKey, model string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	if model == "" {
		model = defaultGeminiEmbeddingModel
	}
	return &GeminiProvider{client: client, model: model}, nil
}

func (p *GeminiProvider) Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error) {
	em := p.client.EmbeddingModel(p.model)
	switch taskType {
	case TaskRetrievalDocument:
		em.TaskType = genai.TaskTypeRetrievalDocument
	case TaskRetrievalQuery:
		em.TaskType = genai.TaskTypeRetrievalQuery
	}

	res, err := em.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("gemini embedding request failed: %v: %w", err, rag.ErrEmbeddingProvider)
	}
	if res.Embedding == nil || len(res.Embedding.Values) == 0 {
		return nil, fmt.Errorf("no embedding data received from gemini: %w", rag.ErrEmbeddingProvider)
	}

	return &EmbeddingResponse{
		Embedding: EmbeddingResponseEmbedding{Values: res.Embedding.Values},
	}, nil
}

func (p *GeminiProvider) Close() error {
	return p.client.Close()
}
