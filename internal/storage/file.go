package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"randpost/internal/counts"
	logx "randpost/pkg/logx"
)

// fileStore keeps counts in a single JSON document.
//
// Files:
//   - <path>                  (counts, rewritten via temp file + rename)
//   - <prefix>.history.jsonl  (append-only JSON Lines)
type fileStore struct {
	log logx.Logger

	mu          sync.Mutex
	path        string
	historyPath string
}

// fileEntry is the on-disk shape of one count.
type fileEntry struct {
	Value string `json:"value"`
	Count int64  `json:"count"`
}

func openFile(cfg Config, log logx.Logger) (Store, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		path = DefaultFilePath
	}

	dir := filepath.Dir(path)
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	prefix := filepath.Join(dir, base)

	return &fileStore{
		log:         log,
		path:        path,
		historyPath: prefix + ".history.jsonl",
	}, nil
}

func (s *fileStore) Close() error { return nil }

func (s *fileStore) Load(ctx context.Context) (counts.Record, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.log.Debug("no count file yet; starting empty", logx.String("path", s.path))
			return counts.Record{}, nil
		}
		return nil, fmt.Errorf("%w: read %s: %w", ErrStorage, s.path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return counts.Record{}, nil
	}

	var entries []fileEntry
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&entries); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", ErrStorage, s.path, err)
	}

	rec := make(counts.Record, len(entries))
	for i, e := range entries {
		if e.Value == "" {
			return nil, fmt.Errorf("%w: %s: entry %d has no value", ErrStorage, s.path, i)
		}
		if e.Count < 0 {
			return nil, fmt.Errorf("%w: %s: negative count for %q", ErrStorage, s.path, e.Value)
		}
		if _, dup := rec[e.Value]; dup {
			return nil, fmt.Errorf("%w: %s: duplicate entry %q", ErrStorage, s.path, e.Value)
		}
		rec[e.Value] = e.Count
	}
	return rec, nil
}

func (s *fileStore) Save(ctx context.Context, rec counts.Record) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]fileEntry, 0, len(rec))
	for _, id := range rec.IDs() {
		entries = append(entries, fileEntry{Value: id, Count: rec[id]})
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: marshal counts: %w", ErrStorage, err)
	}
	data = append(data, '\n')

	if err := writeFileAtomic(s.path, data); err != nil {
		return fmt.Errorf("%w: write %s: %w", ErrStorage, s.path, err)
	}
	return nil
}

func (s *fileStore) AppendHistory(ctx context.Context, e HistoryEntry) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ensureDir(s.historyPath); err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
	f, err := os.OpenFile(s.historyPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("%w: open history: %w", ErrStorage, err)
	}
	encErr := json.NewEncoder(f).Encode(e)
	closeErr := f.Close()
	if encErr != nil {
		return fmt.Errorf("%w: append history: %w", ErrStorage, encErr)
	}
	if closeErr != nil {
		return fmt.Errorf("%w: close history: %w", ErrStorage, closeErr)
	}
	return nil
}

// writeFileAtomic replaces path so that readers see either the old or the
// new content, never a partial write.
func writeFileAtomic(path string, data []byte) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Chmod(tmp, 0o644); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	return nil
}
