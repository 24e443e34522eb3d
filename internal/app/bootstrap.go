package app

import (
	"fmt"
	"time"

	"randpost/internal/config"
	"randpost/internal/counts"
	"randpost/internal/picker"
	"randpost/internal/storage"
	"randpost/internal/transport"
	"randpost/internal/transport/telegram"
	"randpost/internal/transport/webhook"
	logx "randpost/pkg/logx"
)

// Options are the command-line knobs of one invocation.
type Options struct {
	ConfigPath string
	// EnvFile is loaded before the config; EnvRequired makes a missing file fatal.
	EnvFile     string
	EnvRequired bool
	// StatePath overrides storage.path.
	StatePath string
	// DryRun selects a message but neither sends nor saves.
	DryRun bool
	// Seed makes the draw reproducible; 0 seeds from the clock.
	Seed uint64
}

// Deps are the collaborators of an App. Zero fields are built from config.
type Deps struct {
	Log    logx.Logger
	Store  storage.Store
	Sender transport.Sender
	Source picker.Source
}

// New loads the config and wires every collaborator.
func New(opts Options) (*App, error) {
	if opts.ConfigPath == "" {
		opts.ConfigPath = config.DefaultPath
	}
	envFile, required := opts.EnvFile, opts.EnvRequired
	if envFile == "" {
		envFile = config.DefaultEnvFile
	}
	if err := config.LoadDotEnv(envFile, required); err != nil {
		return nil, err
	}
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	logs, log := logx.New(mapLogConfig(cfg))
	a, err := NewWithDeps(cfg, opts, Deps{Log: log})
	if err != nil {
		_ = logs.Close()
		return nil, err
	}
	a.logs = logs
	return a, nil
}

// NewWithDeps builds an App around an already loaded config.
func NewWithDeps(cfg *config.Config, opts Options, deps Deps) (*App, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	wcfg, err := config.WeightConfig(cfg.Environment.WeightType)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrInvalid, err)
	}
	policy, err := counts.ParsePolicy(cfg.Environment.InitialCountType)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrInvalid, err)
	}

	log := deps.Log
	if log.IsZero() {
		log = logx.Nop()
	}

	a := &App{
		cfg:    cfg,
		log:    log,
		weight: wcfg,
		policy: policy,
		dryRun: opts.DryRun,
		src:    deps.Source,
	}
	if a.src == nil {
		a.src = picker.NewSource(opts.Seed)
	}

	a.sender = deps.Sender
	if a.sender == nil {
		a.sender, err = newSender(cfg.Environment, log)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", config.ErrInvalid, err)
		}
	}

	a.store = deps.Store
	if a.store == nil {
		sc, err := mapStorageConfig(cfg, opts.StatePath)
		if err != nil {
			return nil, err
		}
		a.store, err = storage.Open(sc, log.With(logx.String("comp", "storage")))
		if err != nil {
			return nil, err
		}
		a.ownsStore = true
	}

	a.dispatcher = &Dispatcher{
		sender: a.sender,
		store:  a.store,
		user:   cfg.Environment.User,
		log:    log.With(logx.String("comp", "dispatch"), logx.String("transport", a.sender.Name())),
	}
	return a, nil
}

func newSender(env config.EnvironmentConfig, log logx.Logger) (transport.Sender, error) {
	timeout, err := config.ParseDurationOrDefault("environment.timeout", env.Timeout, 10*time.Second)
	if err != nil {
		return nil, err
	}
	switch env.TransportName() {
	case config.TransportTelegram:
		tg := env.Telegram
		if tg == nil {
			return nil, fmt.Errorf("environment.telegram is required when transport=telegram")
		}
		return telegram.New(telegram.Config{
			Token:    tg.Token,
			ChatID:   tg.ChatID,
			ThreadID: tg.ThreadID,
			APIURL:   tg.APIURL,
			Timeout:  timeout,
		}, log.With(logx.String("comp", "telegram")))
	default:
		return webhook.New(webhook.Config{
			URL:      env.WebhookURL,
			ThreadID: env.ThreadID,
			Timeout:  timeout,
		}, log.With(logx.String("comp", "webhook"))), nil
	}
}

func mapLogConfig(cfg *config.Config) logx.Config {
	lc := cfg.Logging
	return logx.Config{
		Level:   lc.Level,
		Console: lc.Console,
		File: logx.FileConfig{
			Enabled: lc.File.Enabled,
			Path:    lc.File.Path,
		},
		Journal: logx.JournalConfig{
			Enabled:    lc.Journal.Enabled,
			MinLevel:   lc.Journal.MinLevel,
			RatePerSec: lc.Journal.RatePerSec,
		},
	}
}
