package config

// modelPresets maps each provider to its default chat and embedding models.
var modelPresets = map[ProviderType]struct {
	Model          string
	EmbeddingModel string
}{
	ProviderOpenAI: {Model: "gpt-4o", EmbeddingModel: "text-embedding-3-small"},
	ProviderOllama: {Model: "llama3.1:8b-instruct-q8_0", EmbeddingModel: "mxbai-embed-large"},
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Provider:          ProviderOllama,
		Model:             "llama3.1:8b-instruct-q8_0",
		EmbeddingProvider: ProviderOllama,
		EmbeddingModel:    "mxbai-embed-large",
		OllamaHost:        "http://localhost:11434",
		DocumentsDir:      "documents",
		DataDir:           "data",
		LogFile:           "logs/blogsmith.log",
		ServerPort:        8080,
		MessageLimit:      4096,
		Pipeline: PipelineConfig{
			Workers:        2,
			TimeoutMinutes: 10,
		},
		FactCheck: FactCheckConfig{
			JudgeModel:     "",
			MaxSources:     10,
			TimeoutSeconds: 30,
		},
	}
}

// PresetModels returns the default chat and embedding models for a provider.
func PresetModels(provider ProviderType) (model, embeddingModel string) {
	if p, ok := modelPresets[provider]; ok {
		return p.Model, p.EmbeddingModel
	}
	p := modelPresets[ProviderOllama]
	return p.Model, p.EmbeddingModel
}
