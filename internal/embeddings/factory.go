package embeddings

import (
	"fmt"
	"os"
)

// NewEmbedder creates an Embedder based on the given provider type and model.
// Supported provider types: "openai", "ollama".
func NewEmbedder(providerType string, model string, ollamaHost string) (Embedder, error) {
	switch providerType {
	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is not set")
		}
		return NewOpenAIEmbedder(apiKey, model), nil

	case "ollama":
		return NewOllamaEmbedder(model, ollamaHost), nil

	default:
		return nil, fmt.Errorf("unsupported embedding provider type: %s", providerType)
	}
}
