package factory

import (
	"fmt"

	"yorkie-bakery-be/pkg/llm"
	"yorkie-bakery-be/pkg/llm/ollama"
	"yorkie-bakery-be/pkg/llm/openai"
)

// NewLLMProvider builds the chat backend named by providerType.
func NewLLMProvider(providerType, modelName, baseURL, apiKey string) (llm.LLMProvider, error) {
	switch providerType {
	case "ollama":
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		return ollama.NewOllamaProvider(baseURL, modelName)
	case "openai":
		return openai.NewOpenAIProvider(apiKey, baseURL, modelName)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
