package config

import (
	"fmt"
	"strconv"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to .blogsmith.yml.
func RunWizard() (*Config, error) {
	fmt.Println("Welcome to blogsmith! Let's configure your article bot.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Provider selection.
	providerPrompt := promptui.Select{
		Label: "Select LLM provider",
		Items: []string{"ollama", "openai"},
	}
	_, providerStr, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	cfg.Provider = ProviderType(providerStr)
	cfg.EmbeddingProvider = cfg.Provider
	cfg.Model, cfg.EmbeddingModel = PresetModels(cfg.Provider)

	// 2. Chat model.
	modelPrompt := promptui.Prompt{
		Label:   "Chat model",
		Default: cfg.Model,
	}
	if cfg.Model, err = modelPrompt.Run(); err != nil {
		return nil, fmt.Errorf("model: %w", err)
	}

	// 3. Embedding model.
	embedPrompt := promptui.Prompt{
		Label:   "Embedding model",
		Default: cfg.EmbeddingModel,
	}
	if cfg.EmbeddingModel, err = embedPrompt.Run(); err != nil {
		return nil, fmt.Errorf("embedding model: %w", err)
	}

	// 4. Telegram bot token. The token can also come from the
	// BLOGSMITH_TELEGRAM_TOKEN environment variable, so empty is allowed here.
	tokenPrompt := promptui.Prompt{
		Label: "Telegram bot token (leave empty to use BLOGSMITH_TELEGRAM_TOKEN)",
	}
	if cfg.TelegramToken, err = tokenPrompt.Run(); err != nil {
		return nil, fmt.Errorf("telegram token: %w", err)
	}

	// 5. Documents directory.
	docsPrompt := promptui.Prompt{
		Label:   "Directory for uploaded documents",
		Default: cfg.DocumentsDir,
	}
	if cfg.DocumentsDir, err = docsPrompt.Run(); err != nil {
		return nil, fmt.Errorf("documents dir: %w", err)
	}

	// 6. Server port.
	portPrompt := promptui.Prompt{
		Label:   "HTTP server port",
		Default: strconv.Itoa(cfg.ServerPort),
		Validate: func(s string) error {
			_, err := strconv.Atoi(s)
			return err
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("server port: %w", err)
	}
	cfg.ServerPort, _ = strconv.Atoi(portStr)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if err := cfg.Save(".blogsmith.yml"); err != nil {
		return nil, err
	}

	fmt.Println()
	fmt.Println("Configuration written to .blogsmith.yml")
	return cfg, nil
}
