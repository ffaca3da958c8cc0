package config

import "time"

// EmbeddingProviderType identifies how knowledge base text is embedded.
type EmbeddingProviderType string

const (
	EmbeddingOpenAI EmbeddingProviderType = "openai"
	EmbeddingOllama EmbeddingProviderType = "ollama"
)

// Config is the top-level service configuration, corresponding to
// .supportbot.yml.
type Config struct {
	ProviderURL string   `yaml:"provider_url" koanf:"provider_url"`
	Model       string   `yaml:"model" koanf:"model"`
	APIKeys     []string `yaml:"api_keys,omitempty" koanf:"api_keys"`

	MaxRetries     int           `yaml:"max_retries" koanf:"max_retries"`
	BaseBackoff    time.Duration `yaml:"base_backoff" koanf:"base_backoff"`
	RequestTimeout time.Duration `yaml:"request_timeout" koanf:"request_timeout"`
	TurnTimeout    time.Duration `yaml:"turn_timeout" koanf:"turn_timeout"`

	ConfidenceThreshold float64 `yaml:"confidence_threshold" koanf:"confidence_threshold"`
	FallbackConfidence  float64 `yaml:"fallback_confidence" koanf:"fallback_confidence"`

	RetrievalK         int `yaml:"retrieval_k" koanf:"retrieval_k"`
	ContextBudgetChars int `yaml:"context_budget_chars" koanf:"context_budget_chars"`

	FailureThreshold int           `yaml:"failure_threshold" koanf:"failure_threshold"`
	Cooldown         time.Duration `yaml:"cooldown" koanf:"cooldown"`

	// MaxRPM caps outbound requests per credential per minute. Zero means
	// no local cap.
	MaxRPM int `yaml:"max_rpm" koanf:"max_rpm"`

	ChunkSize    int `yaml:"chunk_size" koanf:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap" koanf:"chunk_overlap"`

	EmbeddingProvider EmbeddingProviderType `yaml:"embedding_provider" koanf:"embedding_provider"`
	EmbeddingModel    string                `yaml:"embedding_model" koanf:"embedding_model"`

	DataDir string `yaml:"data_dir" koanf:"data_dir"`
	Port    int    `yaml:"port" koanf:"port"`

	LogLevel  string `yaml:"log_level" koanf:"log_level"`
	LogFormat string `yaml:"log_format" koanf:"log_format"`

	AllowAllOrigins bool `yaml:"allow_all_origins" koanf:"allow_all_origins"`
}
