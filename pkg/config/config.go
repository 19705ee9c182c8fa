package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
// Built once at startup and passed down; only this package reads env.
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// External APIs
	Finviz  FinvizConfig
	Mailjet MailjetConfig

	// Report
	Report ReportConfig

	// Schedule
	Schedule ScheduleConfig

	// HTTP
	HTTPTimeout time.Duration

	// Logging
	LogLevel  string
	LogFormat string
}

// FinvizConfig holds Finviz screener API configuration
type FinvizConfig struct {
	APIKey    string // RapidAPI key; empty key falls back to the public scraper
	APIHost   string // RapidAPI host header
	BaseURL   string
	ScrapeURL string // public screener used when no API key is configured

	// Requests per second allowed against the provider
	RateLimit float64
}

// MailjetConfig holds Mailjet transactional email configuration
type MailjetConfig struct {
	APIKey    string
	APISecret string
	BaseURL   string
	FromEmail string
	FromName  string
}

// ReportConfig holds screening and ranking parameters
type ReportConfig struct {
	Recipients []string
	Metric     string // "volume" or "change"
	TopN       int

	// Provider-side filters
	MinMarketCap int64 // USD
	MinVolume    int64 // shares
}

// ScheduleConfig holds the trigger schedule
type ScheduleConfig struct {
	Cron     string // cron expression with seconds field
	Timezone string
}

// Load reads configuration from environment variables.
// This is the only function that calls os.Getenv().
func Load() (*Config, error) {
	// Try multiple paths for .env file
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		Finviz: FinvizConfig{
			APIKey:    getEnv("RAPIDAPI_KEY", ""),
			APIHost:   getEnv("FINVIZ_API_HOST", "finviz-screener.p.rapidapi.com"),
			BaseURL:   getEnv("FINVIZ_BASE_URL", "https://finviz-screener.p.rapidapi.com"),
			ScrapeURL: getEnv("FINVIZ_SCRAPE_URL", "https://finviz.com/screener.ashx"),
			RateLimit: getEnvAsFloat("FINVIZ_RATE_LIMIT", 1.0),
		},

		Mailjet: MailjetConfig{
			APIKey:    getEnv("MAILJET_API_KEY", ""),
			APISecret: getEnv("MAILJET_API_SECRET", ""),
			BaseURL:   getEnv("MAILJET_BASE_URL", "https://api.mailjet.com"),
			FromEmail: getEnv("MAIL_FROM", ""),
			FromName:  getEnv("MAIL_FROM_NAME", "Market Brief"),
		},

		Report: ReportConfig{
			Recipients:   getEnvAsList("REPORT_RECIPIENTS", ""),
			Metric:       getEnv("REPORT_METRIC", "volume"),
			TopN:         getEnvAsInt("REPORT_TOP_N", 20),
			MinMarketCap: getEnvAsInt64("MIN_MARKET_CAP", 300_000_000),
			MinVolume:    getEnvAsInt64("MIN_VOLUME", 100_000),
		},

		Schedule: ScheduleConfig{
			Cron:     getEnv("SCHEDULE_CRON", "0 30 15 * * MON-FRI"),
			Timezone: getEnv("SCHEDULE_TIMEZONE", "Europe/Stockholm"),
		},

		HTTPTimeout: getEnvAsDuration("HTTP_TIMEOUT", "30s"),

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "debug"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	// Validate environment
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	// Validate ranking metric
	if c.Report.Metric != "volume" && c.Report.Metric != "change" {
		return fmt.Errorf("REPORT_METRIC must be one of: volume, change")
	}

	if c.Report.TopN <= 0 {
		return fmt.Errorf("REPORT_TOP_N must be positive")
	}

	for _, addr := range c.Report.Recipients {
		if !strings.Contains(addr, "@") {
			return fmt.Errorf("invalid recipient address: %q", addr)
		}
	}

	if _, err := time.LoadLocation(c.Schedule.Timezone); err != nil {
		return fmt.Errorf("invalid SCHEDULE_TIMEZONE %q: %w", c.Schedule.Timezone, err)
	}

	return nil
}

// Location returns the schedule timezone as a *time.Location
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Schedule.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	// Try paths in order of priority
	paths := []string{
		".env", // Current directory
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
			filepath.Join(exeDir, "..", "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsList(key, defaultValue string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	if valueStr == "" {
		return nil
	}

	parts := strings.Split(valueStr, ",")
	list := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			list = append(list, trimmed)
		}
	}
	return list
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
