package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ziadkadry99/support-bot/internal/chat"
	"github.com/ziadkadry99/support-bot/internal/db"
	"github.com/ziadkadry99/support-bot/internal/escalations"
	"github.com/ziadkadry99/support-bot/internal/ingest"
	"github.com/ziadkadry99/support-bot/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the support bot HTTP server",
	Long:  `Starts the support bot server with the chat API, document management, escalation review endpoints and a WebSocket chat channel.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if servePort > 0 {
			cfg.Port = servePort
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		logger := buildLogger(cfg)
		defer logger.Sync()

		embedder, err := createEmbedder(cfg)
		if err != nil {
			return err
		}

		ctx := context.Background()
		store, err := openStore(ctx, cfg, embedder, logger)
		if err != nil {
			return err
		}

		database, err := db.Open(escalationDBPath(cfg))
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		escalationStore := escalations.NewStore(database)
		orch, pool := buildOrchestrator(cfg, store, escalationStore, logger)

		ingestSvc := ingest.NewService(store,
			ingest.NewChunker(cfg.ChunkSize, cfg.ChunkOverlap), vectorDBDir(cfg), logger)

		srv := server.New(server.Config{
			Port:     cfg.Port,
			AllowAll: cfg.AllowAllOrigins,
		}, logger)

		r := srv.Router()
		chat.NewHandler(orch, pool, store, escalationStore, logger).RegisterRoutes(r)
		ingestSvc.RegisterRoutes(r)
		escalations.RegisterRoutes(r, escalationStore)

		// Graceful shutdown.
		sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			<-sigCtx.Done()
			logger.Info("shutting down server")
			srv.Shutdown(context.Background())
		}()

		logger.Info("supportbot starting",
			zap.String("version", Version),
			zap.Int("port", cfg.Port),
			zap.Int("credentials", pool.Size()),
			zap.Int("documents", store.Count()))

		return srv.Start()
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "HTTP port (overrides config)")
	rootCmd.AddCommand(serveCmd)
}
