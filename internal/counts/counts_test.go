package counts

import (
	"errors"
	"reflect"
	"testing"
)

func TestReconcilePolicies(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		rec    Record
		pool   []string
		policy Policy
		want   Record
	}{
		{
			name:   "zero",
			rec:    Record{"a": 5, "b": 9},
			pool:   []string{"a", "b", "c"},
			policy: PolicyZero,
			want:   Record{"a": 5, "b": 9, "c": 0},
		},
		{
			name:   "min",
			rec:    Record{"a": 5, "b": 9},
			pool:   []string{"a", "b", "c"},
			policy: PolicyMin,
			want:   Record{"a": 5, "b": 9, "c": 5},
		},
		{
			name:   "max",
			rec:    Record{"a": 5, "b": 9},
			pool:   []string{"a", "b", "c", "d"},
			policy: PolicyMax,
			want:   Record{"a": 5, "b": 9, "c": 9, "d": 9},
		},
		{
			name:   "empty record starts at zero",
			rec:    Record{},
			pool:   []string{"x", "y"},
			policy: PolicyMax,
			want:   Record{"x": 0, "y": 0},
		},
		{
			name:   "stale ids are kept",
			rec:    Record{"gone": 3, "a": 1},
			pool:   []string{"a"},
			policy: PolicyZero,
			want:   Record{"gone": 3, "a": 1},
		},
		{
			name:   "stale ids do not move min",
			rec:    Record{"gone": 0, "a": 4, "b": 6},
			pool:   []string{"a", "b", "c"},
			policy: PolicyMin,
			want:   Record{"gone": 0, "a": 4, "b": 6, "c": 4},
		},
		{
			name:   "stale ids do not move max",
			rec:    Record{"gone": 50, "a": 4},
			pool:   []string{"a", "c"},
			policy: PolicyMax,
			want:   Record{"gone": 50, "a": 4, "c": 4},
		},
		{
			name:   "only stale ids starts at zero",
			rec:    Record{"gone": 7},
			pool:   []string{"c"},
			policy: PolicyMin,
			want:   Record{"gone": 7, "c": 0},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Reconcile(tt.rec, tt.pool, tt.policy)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Reconcile = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReconcileDoesNotMutateInput(t *testing.T) {
	t.Parallel()
	rec := Record{"a": 1}
	_ = Reconcile(rec, []string{"a", "b"}, PolicyZero)
	if len(rec) != 1 {
		t.Fatalf("input record mutated: %v", rec)
	}
}

func TestIncrement(t *testing.T) {
	t.Parallel()
	rec := Record{"x": 3, "y": 3}
	got, err := Increment(rec, "x")
	if err != nil {
		t.Fatalf("Increment: %v", err)
	}
	if want := (Record{"x": 4, "y": 3}); !reflect.DeepEqual(got, want) {
		t.Fatalf("Increment = %v, want %v", got, want)
	}
	if rec["x"] != 3 {
		t.Fatalf("input record mutated: %v", rec)
	}

	if _, err := Increment(rec, "z"); !errors.Is(err, ErrUnknownMessage) {
		t.Fatalf("expected ErrUnknownMessage, got %v", err)
	}
}

func TestParsePolicy(t *testing.T) {
	t.Parallel()
	for raw, want := range map[string]Policy{"": PolicyZero, "Zero": PolicyZero, "min": PolicyMin, " MAX ": PolicyMax} {
		got, err := ParsePolicy(raw)
		if err != nil {
			t.Fatalf("ParsePolicy(%q): %v", raw, err)
		}
		if got != want {
			t.Fatalf("ParsePolicy(%q) = %q, want %q", raw, got, want)
		}
	}
	if _, err := ParsePolicy("Median"); err == nil {
		t.Fatal("expected error for unknown policy")
	}
}

func TestBounds(t *testing.T) {
	t.Parallel()
	if _, _, ok := (Record{}).Bounds(); ok {
		t.Fatal("expected ok=false for empty record")
	}
	lo, hi, ok := Record{"a": 7, "b": 2, "c": 11}.Bounds()
	if !ok || lo != 2 || hi != 11 {
		t.Fatalf("Bounds = (%d, %d, %v), want (2, 11, true)", lo, hi, ok)
	}
}
