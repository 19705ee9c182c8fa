package logger

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/wonny/marketbrief/pkg/config"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"unknown", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLogLevel(tt.input); got != tt.want {
				t.Errorf("parseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNew(t *testing.T) {
	cfg := &config.Config{
		Env:       "development",
		LogLevel:  "info",
		LogFormat: "json",
	}

	log := New(cfg)
	if log == nil {
		t.Fatal("New() returned nil")
	}

	// Derived loggers must not share state with the parent
	child := log.WithField("job", "brief")
	if child == log {
		t.Error("WithField() returned the same logger instance")
	}

	withErr := log.WithError(nil)
	if withErr == nil {
		t.Error("WithError(nil) returned nil")
	}
}

func TestNewConsoleFormat(t *testing.T) {
	cfg := &config.Config{
		Env:       "development",
		LogLevel:  "debug",
		LogFormat: "console",
	}

	log := New(cfg)
	if log == nil {
		t.Fatal("New() returned nil")
	}

	// Must not panic
	log.Debug("debug message")
	log.Infof("formatted %s", "message")
	log.WithFields(map[string]interface{}{"a": 1, "b": "two"}).Warn("warn message")
}
