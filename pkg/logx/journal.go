package logx

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/coreos/go-systemd/v22/journal"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// journalSendFunc matches journal.Send.
type journalSendFunc func(msg string, pri journal.Priority, vars map[string]string) error

// journalWriter forwards zerolog JSON lines at or above minLevel to
// journald, at most limiter's rate. Dropped lines are not reported.
type journalWriter struct {
	limiter  *rate.Limiter
	minLevel zerolog.Level
	send     journalSendFunc
}

func newJournalWriter(cfg JournalConfig) (*journalWriter, bool) {
	if !journal.Enabled() {
		return nil, false
	}
	rps := max(1, cfg.RatePerSec)
	return &journalWriter{
		limiter:  rate.NewLimiter(rate.Limit(rps), rps),
		minLevel: parseLevel(cfg.MinLevel, zerolog.InfoLevel),
		send:     journal.Send,
	}, true
}

func (w *journalWriter) Write(p []byte) (int, error) {
	return w.WriteLevel(zerolog.InfoLevel, p)
}

func (w *journalWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level < w.minLevel || !w.limiter.Allow() {
		return len(p), nil
	}
	msg, vars := journalFields(p)
	if msg == "" {
		return len(p), nil
	}
	// A journald failure must not fail the log call.
	_ = w.send(msg, journalPriority(level), vars)
	return len(p), nil
}

// journalFields splits a zerolog JSON line into the message and
// journal variables.
func journalFields(p []byte) (string, map[string]string) {
	var m map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(p), &m); err != nil {
		return truncate(strings.TrimSpace(string(p)), 3500), nil
	}
	msg, _ := m["message"].(string)
	vars := make(map[string]string, len(m))
	for k, v := range m {
		if k == "message" || k == "time" {
			continue
		}
		vars[journalKey(k)] = truncate(fmt.Sprint(v), 600)
	}
	return msg, vars
}

// journalKey maps a field name to a valid journal variable name
// (upper-case letters, digits and underscores, not starting with "_").
func journalKey(k string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(k) {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if out := strings.TrimLeft(b.String(), "_"); out != "" {
		return out
	}
	return "FIELD"
}

func journalPriority(level zerolog.Level) journal.Priority {
	switch {
	case level >= zerolog.ErrorLevel:
		return journal.PriErr
	case level == zerolog.WarnLevel:
		return journal.PriWarning
	case level == zerolog.InfoLevel:
		return journal.PriInfo
	default:
		return journal.PriDebug
	}
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
