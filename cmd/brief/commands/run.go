package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the brief pipeline once",
	Long: `Runs the fetch → rank → format → notify pipeline one time and exits.

This command:
- Fetches the current screener results
- Ranks the top movers by the configured metric
- Sends the summary email to the configured recipients

The exit code is non-zero when the run fails, so it can be used from
cron or CI directly.

Example:
  go run ./cmd/brief run
  go run ./cmd/brief run --dry-run`,
	RunE: runOnce,
}

var (
	dryRun     bool
	runTimeout time.Duration
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "fetch, rank and format but skip delivery; print the text body")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 2*time.Minute, "overall run timeout")
}

func runOnce(cmd *cobra.Command, args []string) error {
	rt, err := initRuntime()
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	if dryRun {
		return runDry(ctx, rt)
	}

	result, err := rt.runner.RunOnce(ctx)
	if err != nil {
		return fmt.Errorf("run brief: %w", err)
	}

	fmt.Printf("✅ Brief sent: %q (fetched=%d ranked=%d duration=%s)\n",
		result.Subject, result.Fetched, result.Ranked, result.Duration.Round(time.Millisecond))
	return nil
}

// runDry executes everything except delivery and prints the text body.
func runDry(ctx context.Context, rt *runtime) error {
	quotes, err := rt.fetcher.Screen(ctx)
	if err != nil {
		return fmt.Errorf("fetch quotes: %w", err)
	}

	ranked := rt.ranker.Rank(quotes)
	rpt := rt.formatter.Build(ranked, time.Now())

	fmt.Printf("Subject: %s\n\n", rpt.Subject)
	fmt.Println(rpt.Text)
	fmt.Printf("(dry run: delivery skipped, %d recipients configured)\n", len(rt.cfg.Report.Recipients))
	return nil
}
