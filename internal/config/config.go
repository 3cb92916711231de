// Package config loads server and CLI settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Archive backends
const (
	ArchiveMemory = "memory"
	ArchiveRedis  = "redis"
)

// Server holds the settings for cmd/server
type Server struct {
	Host     string `env:"CARDBOARD_HOST"`
	Port     int    `env:"CARDBOARD_PORT" envDefault:"8080"`
	LogLevel string `env:"CARDBOARD_LOG_LEVEL" envDefault:"info"`

	DefaultSession string `env:"CARDBOARD_DEFAULT_SESSION" envDefault:"default"`
	BcryptCost     int    `env:"CARDBOARD_BCRYPT_COST" envDefault:"10"`

	Archive    string        `env:"CARDBOARD_ARCHIVE" envDefault:"memory"`
	RedisURL   string        `env:"CARDBOARD_REDIS_URL"`
	ArchiveTTL time.Duration `env:"CARDBOARD_ARCHIVE_TTL" envDefault:"24h"`

	MessageRate   float64 `env:"CARDBOARD_MESSAGE_RATE" envDefault:"50"`
	MessageBurst  int     `env:"CARDBOARD_MESSAGE_BURST" envDefault:"100"`
	AllowedOrigin string  `env:"CARDBOARD_ALLOWED_ORIGIN"`

	OTelEndpoint string `env:"CARDBOARD_OTEL_ENDPOINT"`
}

// Client holds the settings for cmd/cbctl
type Client struct {
	Server       string `env:"CARDBOARD_SERVER" envDefault:"http://localhost:8080"`
	ClientID     string `env:"CARDBOARD_CLIENT_ID"`
	ClientIDFile string `env:"CARDBOARD_CLIENT_ID_FILE"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadServer parses and validates the server settings
func LoadServer() (Server, error) {
	var cfg Server
	if err := ParseEnv(&cfg); err != nil {
		return Server{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

// LoadClient parses the CLI settings
func LoadClient() (Client, error) {
	var cfg Client
	if err := ParseEnv(&cfg); err != nil {
		return Client{}, err
	}
	return cfg, nil
}

// Validate checks settings that depend on each other
func (c Server) Validate() error {
	switch c.Archive {
	case ArchiveMemory:
	case ArchiveRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("CARDBOARD_REDIS_URL required when CARDBOARD_ARCHIVE=%s", ArchiveRedis)
		}
	default:
		return fmt.Errorf("invalid CARDBOARD_ARCHIVE %q: must be %q or %q", c.Archive, ArchiveMemory, ArchiveRedis)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid CARDBOARD_PORT %d", c.Port)
	}
	if c.MessageRate <= 0 || c.MessageBurst <= 0 {
		return fmt.Errorf("CARDBOARD_MESSAGE_RATE and CARDBOARD_MESSAGE_BURST must be positive")
	}
	return nil
}

// Addr returns the listen address
func (c Server) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// SlogLevel maps the configured log level onto slog
func (c Server) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
