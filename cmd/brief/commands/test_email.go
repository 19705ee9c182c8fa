package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/marketbrief/internal/brief"
	"github.com/wonny/marketbrief/internal/mailer/mailjet"
	"github.com/wonny/marketbrief/pkg/config"
	"github.com/wonny/marketbrief/pkg/httputil"
	"github.com/wonny/marketbrief/pkg/logger"
)

// testEmailCmd represents the test-email command
var testEmailCmd = &cobra.Command{
	Use:   "test-email",
	Short: "Send a test email",
	Long: `Sends a short test message through Mailjet to the configured
recipients to verify credentials and deliverability.

Example:
  go run ./cmd/brief test-email`,
	RunE: runTestEmail,
}

func init() {
	rootCmd.AddCommand(testEmailCmd)
}

func runTestEmail(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Market Brief Email Test ===")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)
	httpClient := httputil.New(cfg, log)
	notifier := mailjet.NewClient(cfg, httpClient, log)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	now := time.Now().Format("2006-01-02 15:04:05")
	msg := brief.Message{
		Recipients: cfg.Report.Recipients,
		Subject:    "Market Brief test email",
		TextBody:   fmt.Sprintf("This is a test email sent at %s.\n", now),
		HTMLBody:   fmt.Sprintf("<p>This is a test email sent at %s.</p>", now),
	}

	if err := notifier.Send(ctx, msg); err != nil {
		return fmt.Errorf("send test email: %w", err)
	}

	fmt.Printf("\n✅ Test email sent to %d recipients\n", len(cfg.Report.Recipients))
	return nil
}
