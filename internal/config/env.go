package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables that override the settings file.
// Secrets (webhook URL, bot token) are best kept here rather than in YAML.
const (
	EnvWebhookURL    = "RANDPOST_WEBHOOK_URL"
	EnvTelegramToken = "RANDPOST_TELEGRAM_TOKEN"
	EnvStatePath     = "RANDPOST_STATE_PATH"
	EnvLogLevel      = "RANDPOST_LOG_LEVEL"
)

// DefaultEnvFile is loaded when present; a missing default file is not an error.
const DefaultEnvFile = ".env"

// LoadDotEnv loads KEY=VALUE pairs from file into the process environment.
// Variables already set win. When required is false a missing file is ignored.
func LoadDotEnv(file string, required bool) error {
	file = strings.TrimSpace(file)
	if file == "" {
		return nil
	}
	if _, err := os.Stat(file); err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("%w: env file: %w", ErrInvalid, err)
	}
	if err := godotenv.Load(file); err != nil {
		return fmt.Errorf("%w: env file %s: %w", ErrInvalid, file, err)
	}
	return nil
}

// ApplyEnv copies non-empty overrides from getenv into cfg.
func ApplyEnv(cfg *Config, getenv func(string) string) {
	if cfg == nil || getenv == nil {
		return
	}
	if v := strings.TrimSpace(getenv(EnvWebhookURL)); v != "" {
		cfg.Environment.WebhookURL = v
	}
	if v := strings.TrimSpace(getenv(EnvTelegramToken)); v != "" {
		if cfg.Environment.Telegram == nil {
			cfg.Environment.Telegram = &TelegramConfig{}
		}
		cfg.Environment.Telegram.Token = v
	}
	if v := strings.TrimSpace(getenv(EnvStatePath)); v != "" {
		if cfg.Storage == nil {
			cfg.Storage = &StorageConfig{}
		}
		cfg.Storage.Path = v
	}
	if v := strings.TrimSpace(getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = v
	}
}
