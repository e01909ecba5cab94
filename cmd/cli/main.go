package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	baseURL     string
	timeout     time.Duration
	userID      string
	bearerToken string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "goticket-cli",
		Short:         "GoTicket CLI tool",
		Long:          `A command line interface for operating and calling the GoTicket marketplace.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the GoTicket API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&userID, "user", "", "User id sent as X-User-ID when auth is disabled")
	rootCmd.PersistentFlags().StringVar(&bearerToken, "token", "", "Bearer token sent when auth is enabled")

	// Operator commands
	rootCmd.AddCommand(migrateCmd(), seedCmd(), tokenCmd())

	// API commands
	rootCmd.AddCommand(
		accountCmd(),
		balanceCmd(),
		depositCmd(),
		catalogCmd(),
		holdingsCmd(),
		buyCmd(),
		sellCmd(),
	)

	return rootCmd
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("Failed to format output: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
