package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/manifoldco/promptui"
)

// providerPresets maps a friendly provider label to its endpoint and default
// chat model.
var providerPresets = []struct {
	Label string
	URL   string
	Model string
}{
	{Label: "deepseek", URL: "https://api.deepseek.com/v1", Model: "deepseek-chat"},
	{Label: "openrouter", URL: "https://openrouter.ai/api/v1", Model: "deepseek/deepseek-chat"},
	{Label: "openai", URL: "https://api.openai.com/v1", Model: "gpt-4o-mini"},
}

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to .supportbot.yml.
func RunWizard() (*Config, error) {
	fmt.Println("Welcome to supportbot! Let's configure your service.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Provider endpoint.
	labels := make([]string, len(providerPresets))
	for i, p := range providerPresets {
		labels[i] = p.Label
	}
	providerPrompt := promptui.Select{
		Label: "Select chat provider",
		Items: labels,
	}
	idx, _, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	cfg.ProviderURL = providerPresets[idx].URL
	cfg.Model = providerPresets[idx].Model

	// 2. Model override.
	modelPrompt := promptui.Prompt{
		Label:   "Chat model",
		Default: cfg.Model,
	}
	if cfg.Model, err = modelPrompt.Run(); err != nil {
		return nil, fmt.Errorf("model: %w", err)
	}

	// 3. Embedding provider.
	embedPrompt := promptui.Select{
		Label: "Select embedding provider",
		Items: []string{"openai", "ollama (local)"},
	}
	embedIdx, _, err := embedPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("embedding selection: %w", err)
	}
	if embedIdx == 1 {
		cfg.EmbeddingProvider = EmbeddingOllama
		cfg.EmbeddingModel = "nomic-embed-text"
	}

	// 4. Data directory.
	dataPrompt := promptui.Prompt{
		Label:   "Data directory (knowledge base and escalation db)",
		Default: cfg.DataDir,
	}
	if cfg.DataDir, err = dataPrompt.Run(); err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}

	// 5. Port.
	portPrompt := promptui.Prompt{
		Label:   "HTTP port",
		Default: strconv.Itoa(cfg.Port),
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 || n > 65535 {
				return fmt.Errorf("enter a port between 1 and 65535")
			}
			return nil
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	cfg.Port, _ = strconv.Atoi(portStr)

	if os.Getenv(envPrefix+"API_KEY") == "" {
		fmt.Printf("\nNote: Set %sAPI_KEY (and %sAPI_KEY_2, ... for failover) before running supportbot serve.\n",
			envPrefix, envPrefix)
	}

	if err := cfg.Save(DefaultConfigFile); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", DefaultConfigFile)
	return cfg, nil
}
