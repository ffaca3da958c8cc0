package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/support-bot/internal/orchestrator"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask the support bot a single question from the command line",
	Args:  cobra.ExactArgs(1),
	RunE:  runAsk,
}

func init() {
	askCmd.Flags().String("session", "", "session id for conversational continuity")
	askCmd.Flags().Bool("json", false, "output the full response as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
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

	// CLI questions are not escalation-tracked; no recorder.
	orch, _ := buildOrchestrator(cfg, store, nil, logger)

	sessionID, _ := cmd.Flags().GetString("session")
	resp, err := orch.Chat(ctx, orchestrator.ChatTurn{
		Message:   args[0],
		SessionID: sessionID,
	})
	if err != nil {
		return err
	}

	if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	fmt.Println(resp.Response)
	fmt.Println()
	fmt.Printf("Confidence: %.2f (provider %s, session %s)\n", resp.Confidence, resp.Provider, resp.SessionID)
	if resp.Escalated {
		fmt.Printf("Escalated: %s\n", resp.EscalationReason)
	}
	if len(resp.Sources) > 0 {
		fmt.Printf("Sources: %s\n", strings.Join(resp.Sources, ", "))
	}
	return nil
}
