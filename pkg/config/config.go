// Package config provides configuration management for the bot.
// It loads environment variables and makes them available throughout the application.
package config

import (
	"os"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the bot
type Config struct {
	// Discord
	BotToken   string
	DevGuildID string

	// Ledger
	LedgerDriver string // "sqlite" o "mongo"
	LedgerPath   string

	// MongoDB
	MongoDBURL string
	DBName     string

	// Audit: guildID -> channelID
	AuditChannels       map[string]string
	AuditDefaultChannel string

	// Timeout para llamadas de moderación (timeout/ban)
	ModerationTimeout time.Duration

	// MQTT
	MQTTHost     string
	MQTTPort     string
	MQTTUser     string
	MQTTPassword string
	MQTTEnabled  bool

	// Web Server
	Port             string
	AllowedHostRegex string

	// Environment
	Environment string

	// Webhooks
	ErrorWebhook      string
	LogsWebhook       string
	LogsWebServerHook string

	// Logs
	LogsDir string
}

var (
	Version   = "Dev-Local"
	BuildTime = "Hoy"
)

// cfg holds the global configuration instance
var (
	cfg     *Config
	cfgOnce sync.Once
)

// resetForTesting resets the configuration for testing purposes.
// This function should only be called from test code.
func resetForTesting() {
	cfg = nil
	cfgOnce = sync.Once{}
}

// loadConfig performs the actual configuration loading
func loadConfig() {
	// Load .env file if it exists (ignoring error if it doesn't)
	_ = godotenv.Load()

	cfg = &Config{
		BotToken:   getEnv("botToken", ""),
		DevGuildID: getEnv("devGuildId", ""),

		LedgerDriver: strings.ToLower(getEnv("ledgerDriver", "sqlite")),
		LedgerPath:   getEnv("ledgerPath", "data/warnings.sqlite3"),

		MongoDBURL: getEnv("mongodbUrl", "mongodb://localhost:27017"),
		DBName:     getEnv("dbName", "PancyMod"),

		AuditChannels:       parseChannelMap(getEnv("auditChannels", "")),
		AuditDefaultChannel: getEnv("auditDefaultChannel", ""),

		ModerationTimeout: getDuration("moderationTimeout", 10*time.Second),

		MQTTHost:     getEnv("MQTT_Host", "localhost"),
		MQTTPort:     getEnv("MQTT_Port", "1883"),
		MQTTUser:     getEnv("MQTT_User", ""),
		MQTTPassword: getEnv("MQTT_Password", ""),
		MQTTEnabled:  getEnv("MQTT_Enabled", "true") != "false",

		Port:             getEnv("PORT", "3000"),
		AllowedHostRegex: getEnv("allowedHostRegex", `^((.+\.)?miau\.media|localhost|127\.0\.0\.1)(:\d+)?$`),

		Environment: getEnv("enviroment", "dev"),

		ErrorWebhook:      getEnv("errorWebhook", ""),
		LogsWebhook:       getEnv("logsWebhook", ""),
		LogsWebServerHook: getEnv("logsWebServerWebhook", ""),

		LogsDir: getEnv("LOGS_DIR", "logs"),
	}
}

// Load initializes the configuration from environment variables
func Load() (*Config, error) {
	cfgOnce.Do(loadConfig)
	return cfg, nil
}

// Get returns the current configuration
func Get() *Config {
	// Use sync.Once to ensure thread-safe initialization if Load wasn't called
	cfgOnce.Do(loadConfig)
	return cfg
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDuration parses a Go duration ("10s", "1m") and falls back to the default on error
func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}

// parseChannelMap parses "guild:channel,guild:channel" into a map.
// Malformed pairs are skipped.
func parseChannelMap(raw string) map[string]string {
	out := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		guild, channel, ok := strings.Cut(strings.TrimSpace(pair), ":")
		guild, channel = strings.TrimSpace(guild), strings.TrimSpace(channel)
		if !ok || guild == "" || channel == "" {
			continue
		}
		out[guild] = channel
	}
	return out
}

// IsProd returns true if the environment is production
func (c *Config) IsProd() bool {
	return c.Environment == "prod"
}

// UsesMongo returns true if the warning ledger is stored in MongoDB
func (c *Config) UsesMongo() bool {
	return c.LedgerDriver == "mongo" || c.LedgerDriver == "mongodb"
}
