package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/support-bot/internal/ingest"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [dir]",
	Short: "Ingest a directory of documents into the knowledge base",
	Long:  `Chunks, embeds and indexes every matching file under the given directory, then persists the knowledge base to the data directory.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runIngest,
}

func init() {
	ingestCmd.Flags().StringSlice("pattern", nil, "glob patterns to ingest (default **/*.md, **/*.txt)")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
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

	patterns, _ := cmd.Flags().GetStringSlice("pattern")
	svc := ingest.NewService(store,
		ingest.NewChunker(cfg.ChunkSize, cfg.ChunkOverlap), vectorDBDir(cfg), logger)

	stats, err := svc.LoadDir(ctx, args[0], patterns, true)
	if err != nil {
		return fmt.Errorf("ingesting %s: %w", args[0], err)
	}

	fmt.Printf("Ingested %d file(s) into %d chunk(s)", stats.Files, stats.Chunks)
	if stats.Failed > 0 {
		fmt.Printf(", %d failed", stats.Failed)
	}
	fmt.Printf(" (knowledge base now holds %d chunks)\n", store.Count())
	return nil
}
