// Package config loads process settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the server settings.
type Config struct {
	Port              string
	GinMode           string
	DatabaseURL       string
	AutoMigrate       bool
	TelegramToken     string
	TelegramChatID    int64
	SessionTTL        time.Duration
	CleanupInterval   time.Duration
	ReplicationBuffer int
	PersistTimeout    time.Duration
	LogFile           string
	Verbose           bool
}

// Load reads an optional .env file and then the environment.
func Load() (Config, error) {
	_ = godotenv.Load() // Load .env file if exists
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() (Config, error) {
	cfg := Config{
		Port:          getenv("PORT", "8080"),
		GinMode:       getenv("GIN_MODE", "release"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),
		LogFile:       os.Getenv("LOG_FILE"),
	}

	var err error
	if cfg.AutoMigrate, err = parseBool("DB_AUTO_MIGRATE", true); err != nil {
		return Config{}, err
	}
	if cfg.Verbose, err = parseBool("VERBOSE", false); err != nil {
		return Config{}, err
	}
	if cfg.TelegramChatID, err = parseInt("TELEGRAM_CHAT_ID", 0); err != nil {
		return Config{}, err
	}
	buffer, err := parseInt("REPLICATION_BUFFER", 256)
	if err != nil {
		return Config{}, err
	}
	if buffer < 1 {
		return Config{}, fmt.Errorf("REPLICATION_BUFFER must be positive, got %d", buffer)
	}
	cfg.ReplicationBuffer = int(buffer)
	if cfg.SessionTTL, err = parseDuration("SESSION_TTL", time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.CleanupInterval, err = parseDuration("CLEANUP_INTERVAL", 10*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.PersistTimeout, err = parseDuration("PERSIST_TIMEOUT", 5*time.Second); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid value for %s: %q", key, v)
	}
	return b, nil
}

func parseInt(key string, def int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q", key, v)
	}
	return n, nil
}

func parseDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid value for %s: %q", key, v)
	}
	return d, nil
}
