package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	// Set up test environment variables
	os.Setenv("botToken", "test-token")
	os.Setenv("PORT", "3001")
	os.Setenv("enviroment", "test")
	os.Setenv("ledgerDriver", "MONGO")
	defer func() {
		os.Unsetenv("botToken")
		os.Unsetenv("PORT")
		os.Unsetenv("enviroment")
		os.Unsetenv("ledgerDriver")
	}()

	// Reset global config
	resetForTesting()

	config, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if config.BotToken != "test-token" {
		t.Errorf("BotToken = %v, want %v", config.BotToken, "test-token")
	}

	if config.Port != "3001" {
		t.Errorf("Port = %v, want %v", config.Port, "3001")
	}

	if config.Environment != "test" {
		t.Errorf("Environment = %v, want %v", config.Environment, "test")
	}

	if !config.UsesMongo() {
		t.Errorf("UsesMongo() = false, want true for driver %q", config.LedgerDriver)
	}
}

func TestGetEnv(t *testing.T) {
	os.Setenv("TEST_VAR", "test-value")
	defer os.Unsetenv("TEST_VAR")

	if got := getEnv("TEST_VAR", "default"); got != "test-value" {
		t.Errorf("getEnv() = %v, want %v", got, "test-value")
	}

	if got := getEnv("NON_EXISTENT_VAR", "default"); got != "default" {
		t.Errorf("getEnv() = %v, want %v", got, "default")
	}
}

func TestGetDuration(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Duration
	}{
		{"", 10 * time.Second},
		{"30s", 30 * time.Second},
		{"2m", 2 * time.Minute},
		{"nope", 10 * time.Second},
		{"-5s", 10 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			os.Setenv("TEST_DURATION", tt.raw)
			defer os.Unsetenv("TEST_DURATION")

			if got := getDuration("TEST_DURATION", 10*time.Second); got != tt.want {
				t.Errorf("getDuration(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParseChannelMap(t *testing.T) {
	got := parseChannelMap("111:222, 333:444,broken,:555,666:")

	if len(got) != 2 {
		t.Fatalf("len(parseChannelMap) = %v, want %v (%v)", len(got), 2, got)
	}
	if got["111"] != "222" {
		t.Errorf("channel for 111 = %v, want %v", got["111"], "222")
	}
	if got["333"] != "444" {
		t.Errorf("channel for 333 = %v, want %v", got["333"], "444")
	}

	if empty := parseChannelMap(""); len(empty) != 0 {
		t.Errorf("parseChannelMap(\"\") = %v, want empty map", empty)
	}
}

func TestIsProd(t *testing.T) {
	resetForTesting()
	os.Setenv("enviroment", "prod")
	config, _ := Load()

	if !config.IsProd() {
		t.Error("IsProd() should return true when environment is 'prod'")
	}

	resetForTesting()
	os.Setenv("enviroment", "dev")
	config, _ = Load()

	if config.IsProd() {
		t.Error("IsProd() should return false when environment is not 'prod'")
	}

	os.Unsetenv("enviroment")
}

func TestGet(t *testing.T) {
	resetForTesting()

	// Get should create a new config if none exists
	config := Get()
	if config == nil {
		t.Fatal("Get() returned nil")
	}

	// Get should return the same config on subsequent calls
	config2 := Get()
	if config != config2 {
		t.Error("Get() should return the same config on subsequent calls")
	}
}

func TestDefaultValues(t *testing.T) {
	for _, key := range []string{
		"botToken", "devGuildId", "mongodbUrl", "dbName", "ledgerDriver", "ledgerPath",
		"auditChannels", "moderationTimeout", "MQTT_Host", "MQTT_Port", "PORT", "enviroment", "LOGS_DIR",
	} {
		os.Unsetenv(key)
	}

	resetForTesting()
	config, _ := Load()

	if config.LedgerDriver != "sqlite" {
		t.Errorf("LedgerDriver default = %v, want %v", config.LedgerDriver, "sqlite")
	}

	if config.LedgerPath != "data/warnings.sqlite3" {
		t.Errorf("LedgerPath default = %v, want %v", config.LedgerPath, "data/warnings.sqlite3")
	}

	if config.MongoDBURL != "mongodb://localhost:27017" {
		t.Errorf("MongoDBURL default = %v, want %v", config.MongoDBURL, "mongodb://localhost:27017")
	}

	if config.DBName != "PancyMod" {
		t.Errorf("DBName default = %v, want %v", config.DBName, "PancyMod")
	}

	if config.ModerationTimeout != 10*time.Second {
		t.Errorf("ModerationTimeout default = %v, want %v", config.ModerationTimeout, 10*time.Second)
	}

	if len(config.AuditChannels) != 0 {
		t.Errorf("AuditChannels default = %v, want empty", config.AuditChannels)
	}

	if config.MQTTPort != "1883" {
		t.Errorf("MQTTPort default = %v, want %v", config.MQTTPort, "1883")
	}

	if config.Port != "3000" {
		t.Errorf("Port default = %v, want %v", config.Port, "3000")
	}

	if config.Environment != "dev" {
		t.Errorf("Environment default = %v, want %v", config.Environment, "dev")
	}

	if config.LogsDir != "logs" {
		t.Errorf("LogsDir default = %v, want %v", config.LogsDir, "logs")
	}
}
