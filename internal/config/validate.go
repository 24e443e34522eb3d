package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"randpost/internal/counts"
	"randpost/internal/weight"
)

// Transports understood by environment.transport.
const (
	TransportWebhook  = "webhook"
	TransportTelegram = "telegram"
)

// TransportName returns the configured transport, defaulting to webhook.
func (e EnvironmentConfig) TransportName() string {
	t := strings.ToLower(strings.TrimSpace(e.Transport))
	if t == "" {
		return TransportWebhook
	}
	return t
}

// Validate reports every problem found, joined, each wrapping ErrInvalid.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalid)
	}
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	env := cfg.Environment

	if _, err := WeightConfig(env.WeightType); err != nil {
		add("environment.weight_type: %v", err)
	}
	if _, err := counts.ParsePolicy(env.InitialCountType); err != nil {
		add("environment.initial_count_type: %v", err)
	}
	if _, err := ParseDurationOrDefault("environment.timeout", env.Timeout, 0); err != nil {
		errs = append(errs, err)
	}

	switch env.TransportName() {
	case TransportWebhook:
		if err := checkHTTPURL(env.WebhookURL); err != nil {
			add("environment.webhook_url: %v", err)
		}
	case TransportTelegram:
		tg := env.Telegram
		if tg == nil || strings.TrimSpace(tg.Token) == "" {
			add("environment.telegram.token is required when transport=telegram")
		}
		if tg == nil || tg.ChatID == 0 {
			add("environment.telegram.chat_id is required when transport=telegram")
		}
	default:
		add("environment.transport: unknown transport %q", env.Transport)
	}

	if strings.TrimSpace(env.User.IconURL) != "" {
		if err := checkHTTPURL(env.User.IconURL); err != nil {
			add("environment.user.icon_url: %v", err)
		}
	}

	if len(cfg.Messages) == 0 {
		add("messages must not be empty")
	}
	for _, id := range cfg.Messages.IDs() {
		if strings.TrimSpace(id) == "" {
			add("messages: empty message id")
			continue
		}
		if err := cfg.Messages[id].Validate(); err != nil {
			add("messages.%s: %v", id, err)
		}
	}

	if sc := cfg.Storage; sc != nil {
		switch strings.ToLower(strings.TrimSpace(sc.Driver)) {
		case "", "file":
		case "sqlite", "sqlite3":
			if strings.TrimSpace(sc.Path) == "" {
				add("storage.path is required when storage.driver=sqlite")
			}
			if _, err := ParseDurationOrDefault("storage.busy_timeout", sc.BusyTimeout, 0); err != nil {
				errs = append(errs, err)
			}
		default:
			add("storage.driver: unknown driver %q", sc.Driver)
		}
	}

	return errors.Join(errs...)
}

// WeightConfig converts the tagged weight_type block. beta is required for
// Boltzmann and rejected for every other strategy.
func WeightConfig(w WeightTypeConfig) (weight.Config, error) {
	typ, err := weight.ParseType(w.Type)
	if err != nil {
		return weight.Config{}, err
	}
	cfg := weight.Config{Type: typ}
	switch typ {
	case weight.Boltzmann:
		if w.Beta == nil {
			return weight.Config{}, fmt.Errorf("%w: beta is required for Boltzmann", weight.ErrConfiguration)
		}
		cfg.Beta = *w.Beta
	default:
		if w.Beta != nil {
			return weight.Config{}, fmt.Errorf("%w: beta is only valid for Boltzmann", weight.ErrConfiguration)
		}
	}
	if err := cfg.Validate(); err != nil {
		return weight.Config{}, err
	}
	return cfg, nil
}

func checkHTTPURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return errors.New("is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("host is missing")
	}
	return nil
}
