// Package counts holds the per-message post history used to bias selection.
//
// A Record is passed explicitly through reconcile/increment; nothing here
// touches disk. Persistence lives in internal/storage.
package counts

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var ErrUnknownMessage = errors.New("unknown message id")

// Record maps a message id to the number of successful posts so far.
type Record map[string]int64

// Policy decides the starting count of an id seen for the first time.
type Policy string

const (
	PolicyZero Policy = "Zero"
	PolicyMin  Policy = "Min"
	PolicyMax  Policy = "Max"
)

// DefaultPolicy is used when initial_count_type is omitted.
const DefaultPolicy = PolicyZero

// ParsePolicy accepts the config spelling ("Zero", "Min", "Max"), case-insensitive.
// An empty string yields DefaultPolicy.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return DefaultPolicy, nil
	case "zero":
		return PolicyZero, nil
	case "min":
		return PolicyMin, nil
	case "max":
		return PolicyMax, nil
	default:
		return "", fmt.Errorf("unknown initial count type %q", s)
	}
}

// Clone returns a shallow copy. A nil record clones to an empty one.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// IDs returns the record keys in ascending order.
func (r Record) IDs() []string {
	ids := make([]string, 0, len(r))
	for id := range r {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Bounds returns the minimum and maximum count in r.
// ok is false for an empty record.
func (r Record) Bounds() (lo, hi int64, ok bool) {
	for _, c := range r {
		if !ok {
			lo, hi, ok = c, c, true
			continue
		}
		if c < lo {
			lo = c
		}
		if c > hi {
			hi = c
		}
	}
	return lo, hi, ok
}

// Reconcile inserts an entry for every pool id missing from rec.
// Existing entries, including ids no longer in the pool, are kept.
// The starting count comes from the pool ids already in rec, before any
// insertion; ids no longer in the pool do not move it.
func Reconcile(rec Record, pool []string, policy Policy) Record {
	out := rec.Clone()

	var start int64
	live := make(Record, len(pool))
	for _, id := range pool {
		if c, ok := rec[id]; ok {
			live[id] = c
		}
	}
	if lo, hi, ok := live.Bounds(); ok {
		switch policy {
		case PolicyMin:
			start = lo
		case PolicyMax:
			start = hi
		}
	}

	for _, id := range pool {
		if _, ok := out[id]; ok {
			continue
		}
		out[id] = start
	}
	return out
}

// Increment returns a copy of rec with id advanced by exactly one.
func Increment(rec Record, id string) (Record, error) {
	if _, ok := rec[id]; !ok {
		return nil, fmt.Errorf("increment %q: %w", id, ErrUnknownMessage)
	}
	out := rec.Clone()
	out[id]++
	return out, nil
}
