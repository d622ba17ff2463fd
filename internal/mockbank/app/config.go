package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Issuer         string        // Issuer claim for access tokens (default: aspen-mockbank)
	Audience       string        // Audience claim for access tokens (default: aspen)
	DatabaseFile   string        // Path to the SQLite ledger, or :memory: (default: mockbank.db)
	PepperFile     string        // Path to the password pepper file (default: ./pepper)
	SigningKeyFile string        // Optional: PEM Ed25519 key; generated there if missing, ephemeral if unset
	AccessTTL      time.Duration // Access token lifetime (default: 15m)
	RefreshTTL     time.Duration // Refresh token lifetime (default: 30 days)
	SeedDemo       bool          // Create the demo member on start (default: false)

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 5000)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Stale session cleanup interval (default: 1h)
	SessionRetention     time.Duration // How long dead sessions are kept (default: 7 days)
}

func LoadConfig() Config {
	return Config{
		Issuer:         getEnvOrDefault("MOCKBANK_ISSUER", "aspen-mockbank"),
		Audience:       getEnvOrDefault("MOCKBANK_AUDIENCE", "aspen"),
		DatabaseFile:   getEnvOrDefault("MOCKBANK_DATABASE_FILE", "mockbank.db"),
		PepperFile:     getEnvOrDefault("MOCKBANK_PEPPER_FILE", "pepper"),
		SigningKeyFile: os.Getenv("MOCKBANK_SIGNING_KEY_FILE"),
		AccessTTL:      getEnvDurationOrDefault("MOCKBANK_ACCESS_TTL", 15*time.Minute),
		RefreshTTL:     getEnvDurationOrDefault("MOCKBANK_REFRESH_TTL", 30*24*time.Hour),
		SeedDemo:       getEnvBoolOrDefault("MOCKBANK_SEED_DEMO", false),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 5000),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", time.Hour),
		SessionRetention:     getEnvDurationOrDefault("MOCKBANK_SESSION_RETENTION", 7*24*time.Hour),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// "1h", "30m", "90s"
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
