// Package app runs one invocation: load counts, pick a message, post it,
// and persist the new count.
package app

import (
	"context"
	"errors"
	"fmt"

	"randpost/internal/config"
	"randpost/internal/counts"
	"randpost/internal/picker"
	"randpost/internal/storage"
	"randpost/internal/transport"
	"randpost/internal/weight"
	logx "randpost/pkg/logx"
)

type App struct {
	cfg *config.Config

	log  logx.Logger
	logs *logx.Service

	store     storage.Store
	ownsStore bool

	sender     transport.Sender
	dispatcher *Dispatcher

	weight weight.Config
	policy counts.Policy
	src    picker.Source
	dryRun bool
}

// Result describes what an invocation did.
type Result struct {
	MessageID string
	Weights   map[string]float64
	// Count is the stored count of MessageID after the run.
	Count  int64
	Posted bool
	DryRun bool
}

// Run loads the counts, adds new ids, weighs the pool, draws one id and
// dispatches it.
// The random source is consumed exactly once.
func (a *App) Run(ctx context.Context) (Result, error) {
	var res Result

	rec, err := a.store.Load(ctx)
	if err != nil {
		return res, err
	}

	pool := a.cfg.Messages.IDs()
	if len(pool) == 0 {
		return res, picker.ErrEmptyPool
	}
	rec = counts.Reconcile(rec, pool, a.policy)

	weights, err := weight.Compute(rec, pool, a.weight)
	if err != nil {
		return res, err
	}
	id, err := picker.Select(weights, a.src)
	if err != nil {
		return res, err
	}
	res.MessageID = id
	res.Weights = weights
	res.Count = rec[id]

	a.log.Info("message selected",
		logx.String("message_id", id),
		logx.Int64("count", rec[id]),
		logx.Float64("weight", weights[id]),
		logx.Float64("probability", probability(weights, id)),
		logx.String("strategy", string(a.weight.Type)),
		logx.Int("pool_size", len(pool)),
		logx.Bool("dry_run", a.dryRun),
	)
	a.log.Debug("weights", logx.Any("weights", weights))

	if a.dryRun {
		res.DryRun = true
		a.log.Info("dry run; nothing sent or saved", logx.String("message_id", id))
		return res, nil
	}

	msg, ok := a.cfg.Messages[id]
	if !ok {
		return res, fmt.Errorf("dispatch %q: %w", id, counts.ErrUnknownMessage)
	}
	rec, err = a.dispatcher.Dispatch(ctx, rec, id, msg)
	if err != nil {
		var saveErr *PostedButUnsavedError
		if errors.As(err, &saveErr) {
			res.Posted = true
			res.Count = rec[id]
		}
		return res, err
	}
	res.Posted = true
	res.Count = rec[id]
	return res, nil
}

// Close releases the store and log sinks. Safe to call on every exit path.
func (a *App) Close() error {
	var errs []error
	if a.ownsStore && a.store != nil {
		if err := a.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close store: %w", err))
		}
		a.store = nil
	}
	if a.logs != nil {
		if err := a.logs.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close logs: %w", err))
		}
		a.logs = nil
	}
	return errors.Join(errs...)
}

func probability(weights map[string]float64, id string) float64 {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return 0
	}
	return weights[id] / total
}
