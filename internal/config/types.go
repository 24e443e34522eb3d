package config

import (
	"errors"

	"randpost/internal/message"
)

// ErrInvalid marks configuration problems. Nothing is posted when it is returned.
var ErrInvalid = errors.New("invalid configuration")

// Config is the settings file.
type Config struct {
	Environment EnvironmentConfig `json:"environment"`
	Logging     LoggingConfig     `json:"logging,omitempty"`
	Storage     *StorageConfig    `json:"storage,omitempty"`
	Messages    message.Pool      `json:"messages"`
}

// EnvironmentConfig controls delivery and weighting.
//
// Defaults (when fields are omitted/zero):
//   - transport: "webhook"
//   - initial_count_type: "Zero"
//   - timeout: "10s"
type EnvironmentConfig struct {
	Transport  string           `json:"transport,omitempty"`
	WebhookURL string           `json:"webhook_url,omitempty"`
	ThreadID   string           `json:"thread_id,omitempty"` // webhook only; posts into a forum thread
	Timeout    string           `json:"timeout,omitempty"`   // Go duration string
	WeightType WeightTypeConfig `json:"weight_type"`

	InitialCountType string `json:"initial_count_type,omitempty"`

	User     UserConfig      `json:"user,omitempty"`
	Telegram *TelegramConfig `json:"telegram,omitempty"`
}

// WeightTypeConfig mirrors the tagged form:
//
//	weight_type: { type: "Boltzmann", beta: 0.5 }
//
// Beta is a pointer so we can tell "omitted" from an explicit 0.
type WeightTypeConfig struct {
	Type string   `json:"type"`
	Beta *float64 `json:"beta,omitempty"`
}

// UserConfig overrides the display name and icon of the poster (webhook only).
type UserConfig struct {
	Name    string `json:"name,omitempty"`
	IconURL string `json:"icon_url,omitempty"`
}

type TelegramConfig struct {
	Token    string `json:"token"`
	ChatID   int64  `json:"chat_id"`
	ThreadID int    `json:"thread_id,omitempty"`
	// APIURL overrides the Bot API endpoint (self-hosted bot API servers).
	APIURL string `json:"api_url,omitempty"`
}

// StorageConfig controls where post counts are kept.
//
// Example:
//
//	"storage": { "driver": "file", "path": "conf/message-log.json" }
type StorageConfig struct {
	Driver      string `json:"driver"`
	Path        string `json:"path"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // Go duration string (sqlite)
}

type LoggingConfig struct {
	Level   string         `json:"level"`
	Console bool           `json:"console"`
	File    LoggingFile    `json:"file"`
	Journal LoggingJournal `json:"journal"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

type LoggingJournal struct {
	Enabled    bool   `json:"enabled"`
	MinLevel   string `json:"min_level"`
	RatePerSec int    `json:"rate_per_sec"`
}
