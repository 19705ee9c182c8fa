package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// testProviderCmd represents the test-provider command
var testProviderCmd = &cobra.Command{
	Use:   "test-provider",
	Short: "Test the quote provider",
	Long: `Fetches the current screener results and prints a sample.

This command:
- Calls the Finviz screener (RapidAPI when a key is configured,
  public screener scrape otherwise)
- Prints how many quotes came back and the first few rows

No email is sent.

Example:
  go run ./cmd/brief test-provider`,
	RunE: runTestProvider,
}

func init() {
	rootCmd.AddCommand(testProviderCmd)
}

func runTestProvider(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Market Brief Provider Test ===")

	rt, err := initRuntime()
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	start := time.Now()
	quotes, err := rt.fetcher.Screen(ctx)
	if err != nil {
		return fmt.Errorf("screen: %w", err)
	}

	fmt.Printf("\n✅ Fetched %d quotes in %s\n\n", len(quotes), time.Since(start).Round(time.Millisecond))

	limit := 5
	if len(quotes) < limit {
		limit = len(quotes)
	}
	for _, q := range quotes[:limit] {
		fmt.Printf("  %-6s price=%s change=%s%% volume=%d\n",
			q.Symbol, q.Price.StringFixed(2), q.PercentChange.StringFixed(2), q.Volume)
	}

	return nil
}
