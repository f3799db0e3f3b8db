package cmd

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ziadkadry99/blogsmith/internal/config"
	"github.com/ziadkadry99/blogsmith/internal/embeddings"
	"github.com/ziadkadry99/blogsmith/internal/factcheck"
	"github.com/ziadkadry99/blogsmith/internal/llm"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `blogsmith init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLLMProvider creates the conversational/generation provider from config.
func newLLMProvider(cfg *config.Config) (llm.Provider, error) {
	return llm.NewProvider(string(cfg.Provider), cfg.Model, cfg.OllamaHost)
}

// newEmbedder creates the embedding provider, falling back to the LLM
// provider when no separate embedding provider is configured.
func newEmbedder(cfg *config.Config) (embeddings.Embedder, error) {
	provider := cfg.EmbeddingProvider
	if provider == "" {
		provider = cfg.Provider
	}
	return embeddings.NewEmbedder(string(provider), cfg.EmbeddingModel, cfg.OllamaHost)
}

// newVerifier builds the fact-check verifier over DuckDuckGo search.
func newVerifier(cfg *config.Config, log *zap.Logger) (*factcheck.Verifier, error) {
	judge, err := llm.NewProvider(string(cfg.Provider), cfg.JudgeModel(), cfg.OllamaHost)
	if err != nil {
		return nil, fmt.Errorf("creating judge provider: %w", err)
	}
	return factcheck.NewVerifier(
		factcheck.NewDuckDuckGoSearcher(""),
		judge,
		cfg.JudgeModel(),
		cfg.FactCheck.MaxSources,
		time.Duration(cfg.FactCheck.TimeoutSeconds)*time.Second,
		log,
	), nil
}
