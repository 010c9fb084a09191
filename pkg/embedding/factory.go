package embedding

import (
	"context"
	"fmt"
)

// Config selects and configures the embedding provider.
type Config struct {
	Provider  string // "openai", "ollama" or "gemini"
	Model     string
	BaseURL   string
	APIKey    string
	Dimension int
}

// Fingerprint identifies the vector space a provider produces. Vectors from
// different fingerprints must never be mixed.
func (c Config) Fingerprint() string {
	provider := c.Provider
	if provider == "" {
		provider = "openai"
	}
	return fmt.Sprintf("%s/%s/%d", provider, c.Model, c.Dimension)
}

// NewEmbeddingProvider builds the configured provider wrapped with metrics and
// the dimension check.
func NewEmbeddingProvider(ctx context.Context, cfg Config) (EmbeddingProvider, error) {
	var inner EmbeddingProvider
	switch cfg.Provider {
	case "openai", "":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("openai embeddings require an API key")
		}
		inner = NewOpenAIProvider(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.Dimension)
	case "ollama":
		inner = NewOllamaProvider(cfg.BaseURL, cfg.Model)
	case "gemini":
		p, err := NewGeminiProvider(ctx, cfg.APIKey, cfg.Model)
		if err != nil {
			return nil, err
		}
		inner = p
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}
	return NewInstrumentedProvider(inner, cfg.Provider, cfg.Model, cfg.Dimension), nil
}
