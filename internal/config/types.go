package config

// ProviderType identifies an LLM or embedding provider.
type ProviderType string

const (
	ProviderOpenAI ProviderType = "openai"
	ProviderOllama ProviderType = "ollama"
)

// Config is the top-level blogsmith configuration, corresponding to .blogsmith.yml.
type Config struct {
	Provider          ProviderType    `yaml:"provider" koanf:"provider"`
	Model             string          `yaml:"model" koanf:"model"`
	EmbeddingProvider ProviderType    `yaml:"embedding_provider" koanf:"embedding_provider"`
	EmbeddingModel    string          `yaml:"embedding_model" koanf:"embedding_model"`
	OllamaHost        string          `yaml:"ollama_host" koanf:"ollama_host"`
	TelegramToken     string          `yaml:"telegram_token" koanf:"telegram_token"`
	DocumentsDir      string          `yaml:"documents_dir" koanf:"documents_dir"`
	DataDir           string          `yaml:"data_dir" koanf:"data_dir"`
	LogFile           string          `yaml:"log_file" koanf:"log_file"`
	ServerPort        int             `yaml:"server_port" koanf:"server_port"`
	MessageLimit      int             `yaml:"message_limit" koanf:"message_limit"`
	Pipeline          PipelineConfig  `yaml:"pipeline" koanf:"pipeline"`
	FactCheck         FactCheckConfig `yaml:"fact_check" koanf:"fact_check"`
}

// PipelineConfig holds generation pipeline settings.
type PipelineConfig struct {
	Workers        int `yaml:"workers" koanf:"workers"`
	TimeoutMinutes int `yaml:"timeout_minutes" koanf:"timeout_minutes"`
}

// FactCheckConfig holds fact verification settings.
type FactCheckConfig struct {
	JudgeModel     string `yaml:"judge_model" koanf:"judge_model"`
	MaxSources     int    `yaml:"max_sources" koanf:"max_sources"`
	TimeoutSeconds int    `yaml:"timeout_seconds" koanf:"timeout_seconds"`
}
