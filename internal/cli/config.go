package cli

import (
	"flag"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds the CLI's settings. Environment variables provide the
// defaults and flags override them.
type Config struct {
	Env     string
	BaseURL string

	// CredentialsFile is the encrypted token store. Empty keeps tokens in
	// memory for the life of the process.
	CredentialsFile string
	// MasterKeyFile holds the key sealing CredentialsFile.
	MasterKeyFile string

	DeviceName string
	Timeout    time.Duration

	// Mock runs against an in-process bank with a seeded demo member.
	Mock bool

	LogLevel  string
	LogFormat string
}

// LoadConfig reads the environment and then parses args, returning the
// arguments left after the flags.
func LoadConfig(args []string, stderr io.Writer) (Config, []string, error) {
	home := defaultDir()

	cfg := Config{
		Env:             getEnvOrDefault("ASPEN_ENV", "local"),
		BaseURL:         getEnvOrDefault("ASPEN_BASE_URL", ""),
		CredentialsFile: getEnvOrDefault("ASPEN_CREDENTIALS_FILE", filepath.Join(home, "credentials.db")),
		MasterKeyFile:   getEnvOrDefault("ASPEN_MASTER_KEY", filepath.Join(home, "master.key")),
		DeviceName:      getEnvOrDefault("ASPEN_DEVICE_NAME", deviceName()),
		Timeout:         getEnvDurationOrDefault("ASPEN_TIMEOUT", 30*time.Second),
		Mock:            getEnvBoolOrDefault("ASPEN_MOCK", false),
		LogLevel:        getEnvOrDefault("LOG_LEVEL", "warn"),
		LogFormat:       getEnvOrDefault("LOG_FORMAT", "text"),
	}

	fs := flag.NewFlagSet("aspen", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { usage(fs) }

	fs.StringVar(&cfg.Env, "env", cfg.Env, "deployment: local or production")
	fs.StringVar(&cfg.BaseURL, "url", cfg.BaseURL, "base URL, overrides -env")
	fs.StringVar(&cfg.CredentialsFile, "credentials", cfg.CredentialsFile, "encrypted credential store (empty keeps tokens in memory)")
	fs.StringVar(&cfg.MasterKeyFile, "master-key", cfg.MasterKeyFile, "key file sealing the credential store")
	fs.StringVar(&cfg.DeviceName, "device", cfg.DeviceName, "device name shown in the session list")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "per request timeout")
	fs.BoolVar(&cfg.Mock, "mock", cfg.Mock, "use an in-process bank with a demo member")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")

	if err := fs.Parse(args); err != nil {
		return Config{}, nil, err
	}
	return cfg, fs.Args(), nil
}

func defaultDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "aspen")
	}
	return ".aspen"
}

func deviceName() string {
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "aspen-cli"
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
