package config

import "time"

// DefaultConfigFile is the conventional config file name.
const DefaultConfigFile = ".supportbot.yml"

// DefaultConfig returns a Config with sensible defaults. Chat works with a
// single API key supplied through the environment.
func DefaultConfig() *Config {
	return &Config{
		ProviderURL: "https://api.deepseek.com/v1",
		Model:       "deepseek-chat",

		MaxRetries:     3,
		BaseBackoff:    time.Second,
		RequestTimeout: 30 * time.Second,
		TurnTimeout:    90 * time.Second,

		ConfidenceThreshold: 0.6,
		FallbackConfidence:  0.1,

		RetrievalK:         5,
		ContextBudgetChars: 6000,

		FailureThreshold: 3,
		Cooldown:         60 * time.Second,

		ChunkSize:    1000,
		ChunkOverlap: 200,

		EmbeddingProvider: EmbeddingOpenAI,
		EmbeddingModel:    "text-embedding-3-small",

		DataDir: ".supportbot",
		Port:    8000,

		LogLevel:  "info",
		LogFormat: "json",

		AllowAllOrigins: true,
	}
}
