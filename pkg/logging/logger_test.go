package logging

import (
	"testing"

	"github.com/Pavel-Maksimov/Yatube/pkg/config"
)

func TestInitLogger(t *testing.T) {
	tests := []struct {
		name   string
		level  string
		format string
	}{
		{"json info", "INFO", "json"},
		{"text debug", "DEBUG", "text"},
		{"unknown level falls back", "nonsense", "json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.LoggingConfig{
				Level:  tt.level,
				Format: tt.format,
			}

			if err := InitLogger(cfg); err != nil {
				t.Fatalf("Failed to initialize logger: %v", err)
			}
			if Logger == nil {
				t.Fatal("Expected global logger to be set")
			}
		})
	}
}

func TestGetLoggerFallback(t *testing.T) {
	oldLogger := Logger
	defer func() { Logger = oldLogger }()

	Logger = nil
	if GetLogger() == nil {
		t.Fatal("Expected fallback logger, got nil")
	}
}

func TestWithComponent(t *testing.T) {
	logger := WithComponent("test")
	if logger == nil {
		t.Fatal("Expected component logger, got nil")
	}
}
