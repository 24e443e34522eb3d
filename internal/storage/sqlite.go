package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"randpost/internal/counts"
	logx "randpost/pkg/logx"

	_ "modernc.org/sqlite"
)

//go:embed migrations.sql
var migrationsFS embed.FS

type sqliteStore struct {
	db  *sql.DB
	log logx.Logger
}

func openSQLite(cfg Config, log logx.Logger) (Store, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, fmt.Errorf("%w: sqlite path is required", ErrStorage)
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("%w: create dir: %w", ErrStorage, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrStorage, path, err)
	}
	// SQLite prefers a small number of concurrent writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	st := &sqliteStore{db: db, log: log}

	busy := cfg.BusyTimeout
	if busy <= 0 {
		busy = time.Second
	}
	_, _ = db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", busy.Milliseconds()))
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")

	if err := st.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: migrate %s: %w", ErrStorage, path, err)
	}
	return st, nil
}

func (s *sqliteStore) migrate(ctx context.Context) error {
	b, err := migrationsFS.ReadFile("migrations.sql")
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, string(b))
	return err
}

func (s *sqliteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *sqliteStore) Load(ctx context.Context) (counts.Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, count FROM counts`)
	if err != nil {
		return nil, fmt.Errorf("%w: query counts: %w", ErrStorage, err)
	}
	defer rows.Close()

	rec := counts.Record{}
	for rows.Next() {
		var (
			id string
			n  int64
		)
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("%w: scan counts: %w", ErrStorage, err)
		}
		if n < 0 {
			return nil, fmt.Errorf("%w: negative count for %q", ErrStorage, id)
		}
		rec[id] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: read counts: %w", ErrStorage, err)
	}
	return rec, nil
}

// Save upserts every entry in one transaction. Rows absent from rec are left alone.
func (s *sqliteStore) Save(ctx context.Context, rec counts.Record) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %w", ErrStorage, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO counts(id, count) VALUES(?, ?)
		 ON CONFLICT(id) DO UPDATE SET count = excluded.count`)
	if err != nil {
		return fmt.Errorf("%w: prepare: %w", ErrStorage, err)
	}
	defer stmt.Close()

	for _, id := range rec.IDs() {
		if _, err = stmt.ExecContext(ctx, id, rec[id]); err != nil {
			return fmt.Errorf("%w: upsert %q: %w", ErrStorage, id, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %w", ErrStorage, err)
	}
	return nil
}

func (s *sqliteStore) AppendHistory(ctx context.Context, e HistoryEntry) error {
	if e.At.IsZero() {
		e.At = time.Now()
	}
	if strings.TrimSpace(e.MessageID) == "" {
		return errors.New("history entry without message id")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO history(at, message_id, transport, count) VALUES(?,?,?,?)`,
		e.At.UTC().Format(time.RFC3339Nano), e.MessageID, e.Transport, e.Count,
	)
	if err != nil {
		return fmt.Errorf("%w: append history: %w", ErrStorage, err)
	}
	return nil
}
