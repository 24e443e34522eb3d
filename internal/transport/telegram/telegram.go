// Package telegram posts messages through the Telegram Bot API.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	"randpost/internal/transport"
	logx "randpost/pkg/logx"
)

const DefaultTimeout = 10 * time.Second

type Config struct {
	Token    string
	ChatID   int64
	ThreadID int
	// APIURL overrides the Bot API base URL. Empty uses telebot's default.
	APIURL  string
	Timeout time.Duration
}

type Sender struct {
	cfg Config
	log logx.Logger
	bot *tele.Bot
}

// New builds the bot offline: no getMe round-trip, so the only network call
// of an invocation is the send itself.
func New(cfg Config, log logx.Logger) (*Sender, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("telegram token is empty")
	}
	if cfg.ChatID == 0 {
		return nil, errors.New("telegram chat_id is empty")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	b, err := tele.NewBot(tele.Settings{
		URL:     strings.TrimSpace(cfg.APIURL),
		Token:   cfg.Token,
		Client:  &http.Client{Timeout: cfg.Timeout},
		Offline: true,
	})
	if err != nil {
		return nil, err
	}
	return &Sender{cfg: cfg, log: log, bot: b}, nil
}

func (s *Sender) Name() string { return "telegram" }

// Send makes one sendMessage call. The poster overrides of the post are
// ignored: a bot always posts under its own name.
func (s *Sender) Send(ctx context.Context, p transport.Post) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", transport.ErrDelivery, err)
	}
	text := Render(p.Message)
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: message %q renders to empty text", transport.ErrDelivery, p.ID)
	}

	chat := &tele.Chat{ID: s.cfg.ChatID}
	opt := &tele.SendOptions{
		ParseMode: tele.ModeHTML,
		ThreadID:  s.cfg.ThreadID,
	}
	start := time.Now()
	msg, err := s.bot.Send(chat, text, opt)
	if err != nil {
		return fmt.Errorf("%w: telegram send: %s", transport.ErrDelivery, redact(err.Error(), s.cfg.Token))
	}
	s.log.Debug("telegram message sent",
		logx.String("message_id", p.ID),
		logx.Int("telegram_message_id", msg.ID),
		logx.Duration("took", time.Since(start)),
	)
	return nil
}

func redact(msg, token string) string {
	if token = strings.TrimSpace(token); token != "" {
		msg = strings.ReplaceAll(msg, token, "<token>")
	}
	return msg
}
