package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/ziadkadry99/support-bot/internal/config"
	"github.com/ziadkadry99/support-bot/internal/embeddings"
	"github.com/ziadkadry99/support-bot/internal/escalation"
	"github.com/ziadkadry99/support-bot/internal/escalations"
	"github.com/ziadkadry99/support-bot/internal/keypool"
	"github.com/ziadkadry99/support-bot/internal/llm"
	"github.com/ziadkadry99/support-bot/internal/logging"
	"github.com/ziadkadry99/support-bot/internal/orchestrator"
	"github.com/ziadkadry99/support-bot/internal/retrieval"
	"github.com/ziadkadry99/support-bot/internal/vectordb"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `supportbot init` to create a config file", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

// buildLogger creates the process logger from config.
func buildLogger(cfg *config.Config) *zap.Logger {
	return logging.New(cfg.LogLevel, cfg.LogFormat)
}

// createEmbedder builds the configured embedder wrapped in the local
// fallback, so retrieval keeps working when the embedding API is down.
func createEmbedder(cfg *config.Config) (embeddings.Embedder, error) {
	var primary embeddings.Embedder
	switch cfg.EmbeddingProvider {
	case config.EmbeddingOllama:
		primary = embeddings.NewOllamaEmbedder(cfg.EmbeddingModel, 768, "")
	default:
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" && len(cfg.APIKeys) > 0 {
			apiKey = cfg.APIKeys[0]
		}
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required for OpenAI embeddings")
		}
		primary = embeddings.NewOpenAIEmbedder(apiKey, embeddings.OpenAIModel(cfg.EmbeddingModel))
	}
	return embeddings.NewFallbackEmbedder(primary), nil
}

// openStore creates the vector store and loads any persisted knowledge base
// from the data directory. A missing snapshot is not fatal.
func openStore(ctx context.Context, cfg *config.Config, embedder embeddings.Embedder, logger *zap.Logger) (vectordb.VectorStore, error) {
	store, err := vectordb.NewChromemStore(embedder)
	if err != nil {
		return nil, fmt.Errorf("creating vector store: %w", err)
	}

	vectorDir := vectorDBDir(cfg)
	if err := store.Load(ctx, vectorDir); err != nil {
		logger.Warn("could not load knowledge base, starting empty",
			zap.String("dir", vectorDir), zap.Error(err))
	}
	return store, nil
}

func vectorDBDir(cfg *config.Config) string {
	return filepath.Join(cfg.DataDir, "vectordb")
}

func escalationDBPath(cfg *config.Config) string {
	return filepath.Join(cfg.DataDir, "supportbot.db")
}

// buildOrchestrator wires the chat pipeline: key pool, retrieval, escalation
// strategy and the per-credential provider factory.
func buildOrchestrator(cfg *config.Config, store vectordb.VectorStore,
	recorder *escalations.Store, logger *zap.Logger) (*orchestrator.Orchestrator, *keypool.Pool) {

	pool := keypool.New(cfg.APIKeys, cfg.FailureThreshold, cfg.Cooldown)
	assembler := retrieval.NewAssembler(store, logger)
	strategy := escalation.NewSelfReportStrategy(cfg.ConfidenceThreshold)

	factory := func(cred keypool.Credential) llm.Provider {
		return llm.NewOpenAIProvider(cred.ID, cred.Secret, cfg.ProviderURL, cfg.Model)
	}
	if cfg.MaxRPM > 0 {
		// The token bucket must be shared across attempts, so providers are
		// built once per credential.
		var mu sync.Mutex
		cache := make(map[string]llm.Provider)
		base := factory
		factory = func(cred keypool.Credential) llm.Provider {
			mu.Lock()
			defer mu.Unlock()
			if p, ok := cache[cred.ID]; ok {
				return p
			}
			p := llm.NewRateLimitedProvider(base(cred), cfg.MaxRPM)
			cache[cred.ID] = p
			return p
		}
	}

	var rec orchestrator.Recorder
	if recorder != nil {
		rec = recorder
	}

	orch := orchestrator.New(pool, assembler, strategy, factory, rec, logger, orchestrator.Options{
		Model:              cfg.Model,
		MaxAttempts:        cfg.MaxRetries,
		BaseBackoff:        cfg.BaseBackoff,
		RequestTimeout:     cfg.RequestTimeout,
		TurnTimeout:        cfg.TurnTimeout,
		RetrievalK:         cfg.RetrievalK,
		ContextBudget:      cfg.ContextBudgetChars,
		FallbackConfidence: cfg.FallbackConfidence,
	})
	return orch, pool
}
