// Package webhook posts messages to a Discord-style incoming webhook.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"randpost/internal/message"
	"randpost/internal/transport"
	logx "randpost/pkg/logx"
)

const DefaultTimeout = 10 * time.Second

// Config is the configuration for the webhook sender.
type Config struct {
	URL string
	// ThreadID posts into an existing forum thread when set.
	ThreadID string
	Timeout  time.Duration
}

// Payload is the JSON body of the webhook request.
type Payload struct {
	Username  string          `json:"username,omitempty"`
	AvatarURL string          `json:"avatar_url,omitempty"`
	Content   string          `json:"content,omitempty"`
	Embeds    []message.Embed `json:"embeds,omitempty"`
}

// NewPayload maps a post onto the webhook body. Plain text goes to content;
// a rich message contributes its optional content and its embeds.
func NewPayload(p transport.Post) Payload {
	return Payload{
		Username:  p.Username,
		AvatarURL: p.AvatarURL,
		Content:   p.Message.Content(),
		Embeds:    p.Message.Embeds(),
	}
}

// Sender is the HTTP webhook sender.
type Sender struct {
	cfg    Config
	client *http.Client
	log    logx.Logger
}

// New creates a webhook sender. A zero timeout uses DefaultTimeout.
func New(cfg Config, log logx.Logger) *Sender {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Sender{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		log:    log,
	}
}

func (s *Sender) Name() string { return "webhook" }

// Send makes exactly one POST. Any 2xx response is success.
func (s *Sender) Send(ctx context.Context, p transport.Post) error {
	b, err := json.Marshal(NewPayload(p))
	if err != nil {
		return fmt.Errorf("%w: marshal payload: %w", transport.ErrDelivery, err)
	}

	target, err := s.endpoint()
	if err != nil {
		return fmt.Errorf("%w: %w", transport.ErrDelivery, err)
	}

	rctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(rctx, http.MethodPost, target, bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("%w: build request: %w", transport.ErrDelivery, err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		// Never echo the URL: it carries the webhook token.
		return fmt.Errorf("%w: post: %s", transport.ErrDelivery, redact(err, target, s.cfg.URL))
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: unexpected status %d: %s", transport.ErrDelivery, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	s.log.Debug("webhook accepted",
		logx.String("message_id", p.ID),
		logx.Int("status", resp.StatusCode),
		logx.Duration("took", time.Since(start)),
	)
	return nil
}

func (s *Sender) endpoint() (string, error) {
	u, err := url.Parse(strings.TrimSpace(s.cfg.URL))
	if err != nil {
		return "", fmt.Errorf("parse webhook url: invalid url")
	}
	if tid := strings.TrimSpace(s.cfg.ThreadID); tid != "" {
		q := u.Query()
		q.Set("thread_id", tid)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// redact drops the URL from *url.Error and scrubs any remaining copy of
// the given URLs from the message.
func redact(err error, urls ...string) string {
	msg := err.Error()
	var uerr *url.Error
	if errors.As(err, &uerr) {
		msg = uerr.Op + " <webhook>: " + uerr.Err.Error()
	}
	for _, u := range urls {
		if u = strings.TrimSpace(u); u != "" {
			msg = strings.ReplaceAll(msg, u, "<webhook>")
		}
	}
	return msg
}
