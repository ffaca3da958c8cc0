package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "supportbot",
	Short: "AI student support chatbot with multi-key failover and RAG",
	Long: `Supportbot answers student questions from an institutional knowledge
base. It retrieves relevant documents, asks an LLM provider with automatic
API key failover, and escalates low-confidence answers to human advisors.`,
}

func Execute() error {
	// .env is optional; real deployments set env vars directly.
	_ = godotenv.Load()
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".supportbot.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
