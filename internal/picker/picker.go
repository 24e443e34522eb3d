// Package picker draws one id from a weight map.
package picker

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"time"
)

var (
	ErrEmptyPool     = errors.New("nothing to pick from")
	ErrInvalidWeight = errors.New("invalid weight")
)

// Source yields uniform reals in [0, 1). *rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

// NewSource returns a PCG-backed source. seed 0 seeds from the clock.
func NewSource(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Select consumes exactly one draw from src.
//
// Ids are laid out in ascending order so that the same weights always map
// to the same cumulative intervals.
func Select(weights map[string]float64, src Source) (string, error) {
	if len(weights) == 0 {
		return "", ErrEmptyPool
	}

	ids := make([]string, 0, len(weights))
	total := 0.0
	for id, w := range weights {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return "", fmt.Errorf("%w: %q has weight %v", ErrInvalidWeight, id, w)
		}
		ids = append(ids, id)
		total += w
	}
	if total <= 0 {
		return "", fmt.Errorf("%w: total weight is zero", ErrEmptyPool)
	}
	sort.Strings(ids)

	u := src.Float64() * total
	var (
		acc  float64
		last string
	)
	for _, id := range ids {
		w := weights[id]
		if w == 0 {
			continue
		}
		acc += w
		last = id
		if u < acc {
			return id, nil
		}
	}
	// Rounding left u at or past the final boundary.
	return last, nil
}
