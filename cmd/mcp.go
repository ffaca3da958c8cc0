package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/support-bot/internal/db"
	"github.com/ziadkadry99/support-bot/internal/escalations"
	mcpserver "github.com/ziadkadry99/support-bot/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing knowledge base search and the support chat pipeline to AI agents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
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

		// Chat needs credentials; without them only search is served.
		var chatter mcpserver.Chatter
		if len(cfg.APIKeys) > 0 {
			database, err := db.Open(escalationDBPath(cfg))
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			defer database.Close()

			orch, _ := buildOrchestrator(cfg, store, escalations.NewStore(database), logger)
			chatter = orch
		}

		mcpserver.Version = Version
		fmt.Fprintf(os.Stderr, "supportbot MCP server started on stdio (documents=%d)\n", store.Count())

		return mcpserver.NewServer(store, chatter).Serve()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
