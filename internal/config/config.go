package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Remote backend selectors for Config.RemoteBackend.
const (
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Config holds all runtime configuration, read from environment variables.
// Mains call godotenv.Load() before Load so a local .env file works too.
type Config struct {
	// DataDir is the directory holding the device-local data files.
	DataDir string

	// RemoteBackend selects the remote document store used for cross-device
	// sync: "postgres", "redis", or "" to run fully offline.
	RemoteBackend string

	DatabaseURL   string // postgres backend
	RedisAddr     string // redis backend
	RedisPassword string

	// PushDebounce is the coalescing window for outbound sync pushes.
	PushDebounce time.Duration

	LogLevel  string
	LogFormat string
}

// Load reads configuration from the environment, applying defaults for
// everything except backend connection details.
func Load() (Config, error) {
	cfg := Config{
		DataDir:       getEnv("INVOICE_DATA_DIR", defaultDataDir()),
		RemoteBackend: os.Getenv("REMOTE_BACKEND"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		PushDebounce:  1500 * time.Millisecond,
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "console"),
	}

	if ms := os.Getenv("SYNC_DEBOUNCE_MS"); ms != "" {
		n, err := strconv.Atoi(ms)
		if err != nil || n < 0 {
			return cfg, fmt.Errorf("invalid SYNC_DEBOUNCE_MS %q", ms)
		}
		cfg.PushDebounce = time.Duration(n) * time.Millisecond
	}

	switch cfg.RemoteBackend {
	case "", BackendPostgres, BackendRedis:
	default:
		return cfg, fmt.Errorf("unknown REMOTE_BACKEND %q (want postgres or redis)", cfg.RemoteBackend)
	}
	if cfg.RemoteBackend == BackendPostgres && cfg.DatabaseURL == "" {
		return cfg, fmt.Errorf("REMOTE_BACKEND=postgres requires DATABASE_URL")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "data"
	}
	return filepath.Join(home, ".invoice-system")
}
