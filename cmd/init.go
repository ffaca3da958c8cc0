package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/support-bot/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Interactively create a .supportbot.yml config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.RunWizard()
		if err != nil {
			return err
		}
		fmt.Printf("Provider: %s (model %s)\n", cfg.ProviderURL, cfg.Model)
		fmt.Println("Next: ingest your knowledge base with `supportbot ingest <dir>` and run `supportbot serve`.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
