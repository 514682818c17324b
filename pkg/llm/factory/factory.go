package factory

import (
	"ai-cservice-be/pkg/llm"
	"ai-cservice-be/pkg/llm/dashscope"
	"ai-cservice-be/pkg/llm/ollama"
	"fmt"
)

func NewLLMProvider(providerType, modelName, baseURL, apiKey string) (llm.LLMProvider, error) {
	switch providerType {
	case "ollama":
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, modelName), nil
	case "dashscope":
		if apiKey == "" {
			return nil, fmt.Errorf("dashscope provider requires an api key")
		}
		return dashscope.NewDashScopeProvider(apiKey, baseURL, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
