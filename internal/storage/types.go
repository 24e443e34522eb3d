package storage

import (
	"context"
	"errors"
	"time"

	"randpost/internal/counts"
)

// ErrStorage marks every load/save failure. Callers test it with errors.Is.
var ErrStorage = errors.New("storage error")

// Default locations used when storage.path is omitted.
const (
	DefaultDriver   = "file"
	DefaultFilePath = "conf/message-log.json"
)

// Config configures storage.
//
// Driver values:
//   - "file" (default)
//   - "sqlite", "sqlite3"
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
}

// HistoryEntry records one successful post.
// Keep it compact and schema-stable.
type HistoryEntry struct {
	At        time.Time `json:"at"`
	MessageID string    `json:"message_id"`
	Transport string    `json:"transport"`
	Count     int64     `json:"count"`
}

// Store is the Count Store persistence API.
type Store interface {
	// Load returns an empty record when no prior state exists.
	Load(ctx context.Context) (counts.Record, error)
	Save(ctx context.Context, rec counts.Record) error
	AppendHistory(ctx context.Context, e HistoryEntry) error
	Close() error
}
