package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

const envPrefix = "SUPPORTBOT_"

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (SUPPORTBOT_*). API keys are resolved last
// so env-supplied keys take precedence over the file.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// SUPPORTBOT_LOG_LEVEL -> log_level, etc. The API key slots are handled
	// separately below and skipped here.
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		name := strings.ToLower(strings.TrimPrefix(s, envPrefix))
		if strings.HasPrefix(name, "api_key") {
			return ""
		}
		return name
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if keys := apiKeysFromEnv(); len(keys) > 0 {
		cfg.APIKeys = keys
	}

	return cfg, nil
}

// apiKeysFromEnv collects SUPPORTBOT_API_KEY, SUPPORTBOT_API_KEY_2,
// SUPPORTBOT_API_KEY_3, ... in priority order, stopping at the first unset
// slot.
func apiKeysFromEnv() []string {
	var keys []string
	if v := os.Getenv(envPrefix + "API_KEY"); v != "" {
		keys = append(keys, v)
	} else {
		return nil
	}
	for i := 2; ; i++ {
		v := os.Getenv(fmt.Sprintf("%sAPI_KEY_%d", envPrefix, i))
		if v == "" {
			break
		}
		keys = append(keys, v)
	}
	return keys
}

// Save writes the configuration to the given YAML file path. API keys are
// never written to disk.
func (c *Config) Save(path string) error {
	redacted := *c
	redacted.APIKeys = nil

	data, err := yamlv3.Marshal(&redacted)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

var validEmbeddingProviders = map[EmbeddingProviderType]bool{
	EmbeddingOpenAI: true,
	EmbeddingOllama: true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.ProviderURL == "" {
		return fmt.Errorf("provider_url is required")
	}
	if c.Model == "" {
		return fmt.Errorf("model is required")
	}
	if len(c.APIKeys) == 0 {
		return fmt.Errorf("at least one API key is required (set %sAPI_KEY)", envPrefix)
	}
	if c.MaxRetries <= 0 {
		return fmt.Errorf("max_retries must be positive")
	}
	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1 {
		return fmt.Errorf("confidence_threshold must be in [0,1]")
	}
	if c.RetrievalK <= 0 {
		return fmt.Errorf("retrieval_k must be positive")
	}
	if c.ContextBudgetChars <= 0 {
		return fmt.Errorf("context_budget_chars must be positive")
	}
	if c.FailureThreshold <= 0 {
		return fmt.Errorf("failure_threshold must be positive")
	}
	if c.MaxRPM < 0 {
		return fmt.Errorf("max_rpm must be non-negative")
	}
	if c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("chunk_overlap must be smaller than chunk_size")
	}
	if c.EmbeddingProvider != "" && !validEmbeddingProviders[c.EmbeddingProvider] {
		return fmt.Errorf("invalid embedding_provider %q: must be openai or ollama", c.EmbeddingProvider)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	return nil
}
