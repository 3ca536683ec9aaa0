package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        int
	DBPath      string
	StoreDriver string
	LogLevel    string
	// Inference
	OllamaBaseURL string
	ChatModel     string
	ChatFormat    string
	ChatTimeout   time.Duration
	// Backlog behaviour
	SeedFile    string
	NoteLimit   int
	RecentNotes int
	AutoCleanup bool
	// MCP adapter
	ServerURL string
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:          envInt("PORT", 8787),
		DBPath:        envStr("BACKLOG_DB_PATH", "/data/backlog.db"),
		StoreDriver:   envStr("STORE_DRIVER", "sqlite"),
		LogLevel:      envStr("LOG_LEVEL", "info"),
		OllamaBaseURL: envStr("OLLAMA_BASE_URL", "http://localhost:11434"),
		ChatModel:     envStr("CHAT_MODEL", "llama3.3:70b-instruct-q8_0"),
		ChatFormat:    envStr("CHAT_FORMAT", ""),
		ChatTimeout:   envDuration("CHAT_TIMEOUT", 120*time.Second),
		SeedFile:      envStr("SEED_FILE", ""),
		NoteLimit:     envInt("NOTE_LIMIT", 50),
		RecentNotes:   envInt("RECENT_NOTES", 5),
		AutoCleanup:   envBool("AUTO_CLEANUP", false),
		ServerURL:     envStr("BACKLOG_SERVER_URL", "http://localhost:8787"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}
	switch c.StoreDriver {
	case "sqlite":
		if c.DBPath == "" {
			return fmt.Errorf("BACKLOG_DB_PATH must not be empty")
		}
	case "memory":
	default:
		return fmt.Errorf("STORE_DRIVER must be sqlite or memory, got %q", c.StoreDriver)
	}
	if c.OllamaBaseURL == "" {
		return fmt.Errorf("OLLAMA_BASE_URL must not be empty")
	}
	if c.ChatModel == "" {
		return fmt.Errorf("CHAT_MODEL must not be empty")
	}
	if c.ChatFormat != "" && c.ChatFormat != "json" {
		return fmt.Errorf("CHAT_FORMAT must be empty or json, got %q", c.ChatFormat)
	}
	if c.ChatTimeout <= 0 {
		return fmt.Errorf("CHAT_TIMEOUT must be positive, got %s", c.ChatTimeout)
	}
	if c.NoteLimit < 1 {
		return fmt.Errorf("NOTE_LIMIT must be positive, got %d", c.NoteLimit)
	}
	if c.RecentNotes < 1 {
		return fmt.Errorf("RECENT_NOTES must be positive, got %d", c.RecentNotes)
	}
	return nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
