package embedding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"course-assistant-be/pkg/metrics"
	"course-assistant-be/pkg/rag"
)

// InstrumentedProvider records request metrics and enforces the index dimension.
// A vector of the wrong length is an error; it is never truncated or padded.
type InstrumentedProvider struct {
	inner     EmbeddingProvider
	provider  string
	model     string
	dimension int
}

func NewInstrumentedProvider(inner EmbeddingProvider, provider, model string, dimension int) *InstrumentedProvider {
	return &InstrumentedProvider{
		inner:     inner,
		provider:  provider,
		model:     model,
		dimension: dimension,
	}
}

func (p *InstrumentedProvider) Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error) {
	start := time.Now()
	resp, err := p.inner.Generate(ctx, text, taskType)
	metrics.EmbeddingRequestDuration.WithLabelValues(p.provider, p.model).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues(p.provider, p.model, "error").Inc()
		if !errors.Is(err, rag.ErrEmbeddingProvider) && ctx.Err() == nil {
			err = fmt.Errorf("%v: %w", err, rag.ErrEmbeddingProvider)
		}
		return nil, err
	}

	if got := len(resp.Embedding.Values); p.dimension > 0 && got != p.dimension {
		metrics.EmbeddingRequestsTotal.WithLabelValues(p.provider, p.model, "dimension_mismatch").Inc()
		return nil, fmt.Errorf("%s returned %d values, index expects %d: %w", p.model, got, p.dimension, rag.ErrDimensionMismatch)
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(p.provider, p.model, "success").Inc()
	return resp, nil
}
