package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/marketbrief/pkg/config"
	"github.com/wonny/marketbrief/pkg/logger"
)

// testLoggerCmd represents the test-logger command
var testLoggerCmd = &cobra.Command{
	Use:   "test-logger",
	Short: "Test the structured logger",
	Long: `Exercises the structured logging setup.

This command:
- JSON/Console format output
- Log levels
- Structured field logging
- Error context logging

Example:
  go run ./cmd/brief test-logger
  go run ./cmd/brief test-logger --env production`,
	RunE: runTestLogger,
}

func init() {
	rootCmd.AddCommand(testLoggerCmd)
}

func runTestLogger(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Market Brief Logger Test ===")

	fmt.Println("1. JSON Format (Production)")
	fmt.Println("--------------------------------")
	testJSONFormat()
	fmt.Println()

	fmt.Println("2. Console Format (Development)")
	fmt.Println("--------------------------------")
	testConsoleFormat()
	fmt.Println()

	fmt.Println("3. Structured Logging with Fields")
	fmt.Println("--------------------------------")
	testStructuredLogging()
	fmt.Println()

	fmt.Println("4. Error Logging")
	fmt.Println("--------------------------------")
	testErrorLogging()
	fmt.Println()

	fmt.Println("✅ All logger tests completed!")
	return nil
}

func testJSONFormat() {
	cfg := &config.Config{
		Env:       "production",
		LogLevel:  "info",
		LogFormat: "json",
	}

	log := logger.New(cfg)
	log.Info("Service started")
	log.Warn("Provider responded slowly")
	log.Error("Failed to reach the screener API")
}

func testConsoleFormat() {
	cfg := &config.Config{
		Env:       "development",
		LogLevel:  "debug",
		LogFormat: "console",
	}

	log := logger.New(cfg)
	log.Debug("Debugging application flow")
	log.Info("Screener request prepared")
	log.Warn("No API key configured, falling back to scrape")
}

func testStructuredLogging() {
	cfg := &config.Config{
		Env:       "production",
		LogLevel:  "info",
		LogFormat: "json",
	}

	log := logger.New(cfg)

	// Single field
	jobLog := log.WithField("job", "market_brief")
	jobLog.Info("Job started")

	// Multiple fields
	quoteLog := log.WithFields(map[string]interface{}{
		"symbol": "AAPL",
		"price":  231.59,
		"volume": 54_230_100,
		"change": 2.41,
	})
	quoteLog.Info("Quote ranked")

	// Chained fields
	log.WithField("module", "provider").
		WithField("source", "finviz").
		Info("Fetch completed")
}

func testErrorLogging() {
	cfg := &config.Config{
		Env:       "production",
		LogLevel:  "error",
		LogFormat: "json",
	}

	log := logger.New(cfg)

	// Simple error
	err := errors.New("connection timeout")
	log.WithError(err).Error("Failed to fetch quotes")

	// Error with context
	log.WithError(err).
		WithFields(map[string]interface{}{
			"retry_count": 3,
			"timeout_ms":  5000,
			"endpoint":    "/table",
		}).
		Error("Connection failed after retries")
}
