package embedding

import (
	"fmt"
)

// NewEmbeddingProvider creates an embedding client for the given backend.
func NewEmbeddingProvider(providerType, model, baseURL, apiKey string, dimensions int) (EmbeddingProvider, error) {
	switch providerType {
	case "ollama":
		return NewOllamaProvider(baseURL, model)
	case "openai":
		if apiKey == "" {
			return nil, fmt.Errorf("openai embedding provider requires an API key")
		}
		return NewOpenAIProvider(apiKey, baseURL, model, dimensions), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", providerType)
	}
}
