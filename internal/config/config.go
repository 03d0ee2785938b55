package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

type Config struct {
	Port           string        `yaml:"port" validate:"required,numeric"`
	DatabaseURL    string        `yaml:"database_url"`
	MaxUndoHistory int           `yaml:"max_undo_history" validate:"min=1,max=500"`
	SessionTTL     time.Duration `yaml:"session_ttl" validate:"gt=0"`
	LogLevel       string        `yaml:"log_level" validate:"oneof=debug info warn error"`
}

func defaults() Config {
	return Config{
		Port:           "8080",
		MaxUndoHistory: 50,
		SessionTTL:     time.Hour,
		LogLevel:       "info",
	}
}

// Load reads the optional YAML file named by CONFIG_FILE, applies
// environment overrides and validates the result.
func Load() (Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.MaxUndoHistory = getEnvInt("MAX_UNDO_HISTORY", cfg.MaxUndoHistory)
	cfg.SessionTTL = getEnvDuration("SESSION_TTL", cfg.SessionTTL)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)

	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func (c Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
