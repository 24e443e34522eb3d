package picker

import (
	"errors"
	"math"
	"testing"
)

// fixedSource replays a fixed value.
type fixedSource float64

func (f fixedSource) Float64() float64 { return float64(f) }

func TestSelectIntervals(t *testing.T) {
	t.Parallel()
	weights := map[string]float64{"c": 1, "a": 2, "b": 1}
	// Sorted layout over total=4: a [0,2) b [2,3) c [3,4)
	tests := []struct {
		u    float64
		want string
	}{
		{0, "a"},
		{0.49, "a"},
		{0.5, "b"},
		{0.74, "b"},
		{0.75, "c"},
		{0.999999, "c"},
	}
	for _, tt := range tests {
		got, err := Select(weights, fixedSource(tt.u))
		if err != nil {
			t.Fatalf("Select(u=%v): %v", tt.u, err)
		}
		if got != tt.want {
			t.Fatalf("Select(u=%v) = %s, want %s", tt.u, got, tt.want)
		}
	}
}

func TestSelectSkipsZeroWeights(t *testing.T) {
	t.Parallel()
	weights := map[string]float64{"a": 0, "b": 1, "c": 0}
	for _, u := range []float64{0, 0.3, 0.999999} {
		got, err := Select(weights, fixedSource(u))
		if err != nil {
			t.Fatalf("Select: %v", err)
		}
		if got != "b" {
			t.Fatalf("Select(u=%v) = %s, want b", u, got)
		}
	}
}

func TestSelectRoundingFallsBackToLastPositive(t *testing.T) {
	t.Parallel()
	weights := map[string]float64{"a": 1, "b": 1, "z": 0}
	got, err := Select(weights, fixedSource(1))
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if got != "b" {
		t.Fatalf("Select = %s, want b", got)
	}
}

func TestSelectDeterministicWithSeed(t *testing.T) {
	t.Parallel()
	weights := map[string]float64{"a": 0.3, "b": 1, "c": 0.05, "d": 0.7}
	first := make([]string, 0, 50)
	src := NewSource(42)
	for i := 0; i < 50; i++ {
		id, err := Select(weights, src)
		if err != nil {
			t.Fatalf("Select: %v", err)
		}
		first = append(first, id)
	}
	src = NewSource(42)
	for i := 0; i < 50; i++ {
		id, err := Select(weights, src)
		if err != nil {
			t.Fatalf("Select: %v", err)
		}
		if id != first[i] {
			t.Fatalf("draw %d = %s, want %s", i, id, first[i])
		}
	}
}

func TestSelectUniformCoverage(t *testing.T) {
	t.Parallel()
	weights := map[string]float64{"a": 1, "b": 1, "c": 1, "d": 1}
	const draws = 40000
	src := NewSource(7)
	seen := map[string]int{}
	for i := 0; i < draws; i++ {
		id, err := Select(weights, src)
		if err != nil {
			t.Fatalf("Select: %v", err)
		}
		seen[id]++
	}
	// sd per bucket is ~87; allow a wide margin.
	for id := range weights {
		freq := float64(seen[id]) / draws
		if math.Abs(freq-0.25) > 0.02 {
			t.Fatalf("frequency of %s = %.4f, want ~0.25 (%v)", id, freq, seen)
		}
	}
}

func TestSelectWeightedFrequencies(t *testing.T) {
	t.Parallel()
	weights := map[string]float64{"a": 3, "b": 1}
	const draws = 20000
	src := NewSource(99)
	seen := map[string]int{}
	for i := 0; i < draws; i++ {
		id, _ := Select(weights, src)
		seen[id]++
	}
	ratio := float64(seen["a"]) / float64(seen["b"])
	if ratio < 2.6 || ratio > 3.4 {
		t.Fatalf("ratio a/b = %.2f, want ~3 (%v)", ratio, seen)
	}
}

func TestSelectErrors(t *testing.T) {
	t.Parallel()
	if _, err := Select(nil, fixedSource(0)); !errors.Is(err, ErrEmptyPool) {
		t.Fatalf("expected ErrEmptyPool, got %v", err)
	}
	if _, err := Select(map[string]float64{"a": 0, "b": 0}, fixedSource(0)); !errors.Is(err, ErrEmptyPool) {
		t.Fatalf("expected ErrEmptyPool, got %v", err)
	}
	for _, w := range []float64{-1, math.NaN(), math.Inf(1)} {
		if _, err := Select(map[string]float64{"a": 1, "b": w}, fixedSource(0)); !errors.Is(err, ErrInvalidWeight) {
			t.Fatalf("weight %v: expected ErrInvalidWeight, got %v", w, err)
		}
	}
}
