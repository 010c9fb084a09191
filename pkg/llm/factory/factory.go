package factory

import (
	"fmt"

	"course-assistant-be/pkg/llm"
	"course-assistant-be/pkg/llm/ollama"
	"course-assistant-be/pkg/llm/openai"
)

func NewOracle(providerType, modelName, baseURL, apiKey string) (llm.Oracle, error) {
	switch providerType {
	case "openai", "":
		if apiKey == "" {
			return nil, fmt.Errorf("openai provider requires an API key")
		}
		if modelName == "" {
			modelName = "gpt-4.1-mini"
		}
		return openai.NewOpenAIProvider(apiKey, baseURL, modelName), nil
	case "ollama":
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
