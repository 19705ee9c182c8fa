package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	env        string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "brief",
	Short: "Market Brief - daily top-movers email digest",
	Long: `Market Brief CLI

Fetches stock quotes from the Finviz screener, ranks the top movers
by trading volume or percent change, and delivers a text/HTML summary
email through Mailjet.

Usage:
  go run ./cmd/brief [command]

Examples:
  go run ./cmd/brief run
  go run ./cmd/brief run --dry-run
  go run ./cmd/brief scheduler start
  go run ./cmd/brief api
  go run ./cmd/brief test-provider`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "development", "environment (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
