package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"trading-journal-go/internal/client"
)

var addr string

var rootCmd = &cobra.Command{
	Use:   "journal",
	Short: "Command-line client for the trading journal API",
	Long: `journal talks to a running trading-journal server.

It can record and close trades, inspect the journal, and print the
account, metrics, daily and monthly statistics.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	return rootCmd.Execute()
}

// apiClient builds the client for the configured server address.
func apiClient() *client.Client {
	return client.New(addr, zap.NewNop())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&addr, "addr", "http://localhost:5000", "base URL of the journal server")
}
