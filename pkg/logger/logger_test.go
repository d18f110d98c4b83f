package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func TestNewLogger(t *testing.T) {
	// Create a new logger without webhooks or files
	l := NewLogger("", "", "")
	if l == nil {
		t.Fatal("Expected logger to be created, got nil")
	}
	l.SetOutput(&bytes.Buffer{})

	// Test that logger methods don't panic
	l.Info("Test info message", "TEST")
	l.Warn("Test warning message", "TEST")
	l.Debug("Test debug message", "TEST")
	l.System("Test system message", "TEST")
	l.Success("Test success message", "TEST")
	l.Error("Test error message", "TEST")
	l.Critical("Test critical message", "TEST")

	l.Close()
}

func TestLogLevelString(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{LevelCritical, "CRITICAL"},
		{LevelError, "ERROR"},
		{LevelWarn, "WARN"},
		{LevelSuccess, "SUCCESS"},
		{LevelInfo, "INFO"},
		{LevelDebug, "DEBUG"},
		{LevelSystem, "SYSTEM"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.level.String(); got != tt.expected {
				t.Errorf("LogLevel.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestLogLevelDiscordColor(t *testing.T) {
	tests := []struct {
		level LogLevel
		color int
	}{
		{LevelCritical, 0xFF0000},
		{LevelError, 0xFF0000},
		{LevelWarn, 0xFFFF00},
		{LevelSuccess, 0x00FF00},
		{LevelInfo, 0x0000FF},
		{LevelDebug, 0x800080},
		{LevelSystem, 0x808080},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			if got := tt.level.DiscordColor(); got != tt.color {
				t.Errorf("LogLevel.DiscordColor() = %v, want %v", got, tt.color)
			}
		})
	}
}

func TestConsoleLineFormat(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger("", "", "")
	l.SetOutput(&buf)

	l.Success("Advertencia registrada", "Ledger")

	line := buf.String()
	if !strings.Contains(line, "SUCCESS") {
		t.Errorf("console line %q does not contain level", line)
	}
	if !strings.Contains(line, "[Ledger]: Advertencia registrada") {
		t.Errorf("console line %q does not contain prefix and message", line)
	}
}

func TestLogFileCreation(t *testing.T) {
	logsDir := filepath.Join(t.TempDir(), "logs")

	l := NewLogger("", "", logsDir)
	l.SetOutput(&bytes.Buffer{})

	l.Info("combined only", "TEST")
	l.Error("combined and error", "TEST")
	l.Close()

	combined, err := os.ReadFile(filepath.Join(logsDir, "combined.log"))
	if err != nil {
		t.Fatalf("Expected combined.log to be created: %v", err)
	}
	errorLog, err := os.ReadFile(filepath.Join(logsDir, "error.log"))
	if err != nil {
		t.Fatalf("Expected error.log to be created: %v", err)
	}

	if !strings.Contains(string(combined), "combined only") || !strings.Contains(string(combined), "combined and error") {
		t.Errorf("combined.log = %q, want both entries", combined)
	}
	if strings.Contains(string(errorLog), "combined only") {
		t.Errorf("error.log = %q, should not contain info entries", errorLog)
	}
	if !strings.Contains(string(errorLog), "combined and error") {
		t.Errorf("error.log = %q, want error entry", errorLog)
	}
	if strings.Contains(string(combined), "\033[") {
		t.Error("file output should not contain ANSI colors")
	}
}

func TestGlobalLoggerInit(t *testing.T) {
	// Reset the global logger for this test
	logger = nil
	once = sync.Once{}

	l := Init("", "", "")
	if l == nil {
		t.Fatal("Expected Init to return a logger")
	}

	// Calling Init again should return the same logger
	l2 := Init("different", "different", "")
	if l != l2 {
		t.Error("Expected Init to return the same logger on subsequent calls")
	}

	// Get should return the same logger
	l3 := Get()
	if l != l3 {
		t.Error("Expected Get to return the same logger")
	}

	l.Close()
}
