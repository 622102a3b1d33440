package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates application configuration values.
type Config struct {
	HTTP      HTTPConfig
	Remote    RemoteConfig
	Ledger    LedgerConfig
	Integrity IntegrityConfig
	Logging   LoggingConfig
}

// HTTPConfig governs HTTP server behaviour.
type HTTPConfig struct {
	Host              string
	Port              int
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
	AllowedOriginsCSV string
}

// RemoteConfig describes connectivity to the backend trade API and the
// service identity this process acts under.
type RemoteConfig struct {
	BaseURL        string
	RequestTimeout time.Duration
	AuthToken      string
	ServiceID      string
	ServiceRole    string
}

// LedgerConfig describes connectivity to the graph-backed ledger store.
// An empty URI selects the in-memory ledger (local development only).
type LedgerConfig struct {
	URI            string
	Database       string
	Username       string
	Password       string
	MaxConnections int
}

// IntegrityConfig controls the periodic document integrity sweep.
type IntegrityConfig struct {
	Enabled  bool
	Interval time.Duration
	Workers  int
}

// LoggingConfig controls structured logging settings.
type LoggingConfig struct {
	Level         string
	Format        string // text|json
	IncludeCaller bool
}

const (
	defaultHost             = "0.0.0.0"
	defaultPort             = 8080
	defaultReadTimeout      = 10 * time.Second
	defaultWriteTimeout     = 15 * time.Second
	defaultIdleTimeout      = 60 * time.Second
	defaultShutdownTimeout  = 10 * time.Second
	defaultRemoteTimeout    = 15 * time.Second
	defaultIntegrityPeriod  = 15 * time.Minute
	defaultIntegrityWorkers = 4
	defaultLedgerSessions   = 10
	defaultLoggingLevel     = "info"
	defaultLoggingFormat    = "text"
)

// Load reads configuration from environment variables, applying defaults.
// A .env file in the working directory is loaded first when present.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		HTTP: HTTPConfig{
			Host:              valueOrDefault("SERVER_HOST", defaultHost),
			ReadTimeout:       defaultReadTimeout,
			WriteTimeout:      defaultWriteTimeout,
			IdleTimeout:       defaultIdleTimeout,
			ShutdownTimeout:   defaultShutdownTimeout,
			AllowedOriginsCSV: os.Getenv("SERVER_ALLOWED_ORIGINS"),
		},
		Remote: RemoteConfig{
			BaseURL:        os.Getenv("TRADE_API_URL"),
			RequestTimeout: defaultRemoteTimeout,
			AuthToken:      os.Getenv("TRADE_API_TOKEN"),
			ServiceID:      valueOrDefault("SERVICE_ACTOR_ID", "SYSTEM"),
			ServiceRole:    valueOrDefault("SERVICE_ACTOR_ROLE", "ADMIN"),
		},
		Ledger: LedgerConfig{
			URI:            os.Getenv("LEDGER_URI"),
			Database:       valueOrDefault("LEDGER_DATABASE", ""),
			Username:       os.Getenv("LEDGER_USERNAME"),
			Password:       os.Getenv("LEDGER_PASSWORD"),
			MaxConnections: parseIntWithDefault("LEDGER_MAX_CONNECTIONS", defaultLedgerSessions),
		},
		Integrity: IntegrityConfig{
			Enabled:  parseBoolWithDefault("INTEGRITY_ENABLED", false),
			Interval: defaultIntegrityPeriod,
			Workers:  parseIntWithDefault("INTEGRITY_WORKERS", defaultIntegrityWorkers),
		},
		Logging: LoggingConfig{
			Level:         valueOrDefault("LOG_LEVEL", defaultLoggingLevel),
			Format:        valueOrDefault("LOG_FORMAT", defaultLoggingFormat),
			IncludeCaller: parseBoolWithDefault("LOG_INCLUDE_CALLER", false),
		},
	}

	port, err := parsePort("SERVER_PORT", defaultPort)
	if err != nil {
		return Config{}, err
	}
	cfg.HTTP.Port = port

	durations := []struct {
		key    string
		target *time.Duration
	}{
		{"SERVER_READ_TIMEOUT", &cfg.HTTP.ReadTimeout},
		{"SERVER_WRITE_TIMEOUT", &cfg.HTTP.WriteTimeout},
		{"SERVER_IDLE_TIMEOUT", &cfg.HTTP.IdleTimeout},
		{"SERVER_SHUTDOWN_TIMEOUT", &cfg.HTTP.ShutdownTimeout},
		{"TRADE_API_TIMEOUT", &cfg.Remote.RequestTimeout},
		{"INTEGRITY_INTERVAL", &cfg.Integrity.Interval},
	}
	for _, d := range durations {
		if v := os.Getenv(d.key); v != "" {
			parsed, err := time.ParseDuration(v)
			if err != nil {
				return Config{}, fmt.Errorf("invalid %s: %w", d.key, err)
			}
			*d.target = parsed
		}
	}

	return cfg, nil
}

func valueOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseBoolWithDefault(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		val, err := strconv.ParseBool(v)
		if err != nil {
			return fallback
		}
		return val
	}
	return fallback
}

func parseIntWithDefault(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if val, err := strconv.Atoi(v); err == nil {
			return val
		}
	}
	return fallback
}

func parsePort(key string, fallback int) (int, error) {
	if v := os.Getenv(key); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s value %q: %w", key, v, err)
		}
		if port <= 0 || port > 65535 {
			return 0, fmt.Errorf("port %d is out of range", port)
		}
		return port, nil
	}
	return fallback, nil
}
