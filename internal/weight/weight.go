// Package weight turns post counts into selection weights.
//
// Every strategy works on the distance from the least-posted message
// (c - c_min), so weights stay in (0, 1] no matter how large counts grow.
package weight

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"randpost/internal/counts"
)

var (
	ErrConfiguration = errors.New("invalid weight configuration")
	ErrEmptyPool     = errors.New("message pool is empty")
)

type Type string

const (
	Uniform   Type = "Uniform"
	MinOnly   Type = "MinOnly"
	Linear    Type = "Linear"
	Boltzmann Type = "Boltzmann"
)

// ParseType accepts the config spelling of a strategy, case-insensitive.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "uniform":
		return Uniform, nil
	case "minonly", "min_only":
		return MinOnly, nil
	case "linear":
		return Linear, nil
	case "boltzmann":
		return Boltzmann, nil
	case "":
		return "", fmt.Errorf("%w: weight type is required", ErrConfiguration)
	default:
		return "", fmt.Errorf("%w: unknown weight type %q", ErrConfiguration, s)
	}
}

// Config selects a strategy. Beta is only read by Boltzmann.
type Config struct {
	Type Type
	Beta float64
}

func (c Config) Validate() error {
	switch c.Type {
	case Uniform, MinOnly, Linear:
		return nil
	case Boltzmann:
		if math.IsNaN(c.Beta) || math.IsInf(c.Beta, 0) || c.Beta <= 0 {
			return fmt.Errorf("%w: boltzmann beta must be a finite number > 0, got %v", ErrConfiguration, c.Beta)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown weight type %q", ErrConfiguration, c.Type)
	}
}

// Compute returns a weight for every id in pool. rec must already be
// reconciled against pool; ids of rec outside pool are ignored.
func Compute(rec counts.Record, pool []string, cfg Config) (map[string]float64, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(pool) == 0 {
		return nil, ErrEmptyPool
	}

	cs := make([]int64, len(pool))
	minCount := int64(math.MaxInt64)
	for i, id := range pool {
		c, ok := rec[id]
		if !ok {
			return nil, fmt.Errorf("weight %q: %w", id, counts.ErrUnknownMessage)
		}
		cs[i] = c
		if c < minCount {
			minCount = c
		}
	}

	out := make(map[string]float64, len(pool))
	for i, id := range pool {
		out[id] = weightOf(cfg, float64(cs[i]-minCount))
	}
	return out, nil
}

// weightOf maps the distance above the minimum count to a weight.
// Every strategy yields exactly 1 at distance 0.
func weightOf(cfg Config, delta float64) float64 {
	switch cfg.Type {
	case MinOnly:
		if delta == 0 {
			return 1
		}
		return 0
	case Linear:
		return 1 / (1 + delta)
	case Boltzmann:
		return math.Exp(-cfg.Beta * delta)
	default:
		return 1
	}
}
