package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var noColor bool

var rootCmd = &cobra.Command{
	Use:   "scriba",
	Short: "Conversational meeting assistant service",
	Long: `scriba receives chat messages and call webhooks, orchestrates a
per-conversation call lifecycle, aggregates meeting and transcript context
from Microsoft Graph, and produces summaries through Gemini.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the scriba version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("scriba version %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(conversationsCmd)
	rootCmd.AddCommand(interactionsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		printError("%v", err)
		os.Exit(1)
	}
}
