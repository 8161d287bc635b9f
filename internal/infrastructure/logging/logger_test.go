package logging

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"unknown", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNewAppliesLevel(t *testing.T) {
	logger := New(Config{Level: "error", Format: "json"})

	if logger.GetLevel() != zerolog.ErrorLevel {
		t.Fatalf("expected error level, got %v", logger.GetLevel())
	}
}

func TestNewConsoleFormat(t *testing.T) {
	// Console output should still construct a working logger.
	logger := New(Config{Level: "debug", Format: "console"})

	if logger.GetLevel() != zerolog.DebugLevel {
		t.Fatalf("expected debug level, got %v", logger.GetLevel())
	}
}
