package snapshot

import (
	"errors"
	"reflect"
	"testing"
)

func TestNewPlanSingleOffset(t *testing.T) {
	// Any surface that fits in the viewport needs exactly one frame.
	for _, scrollHeight := range []int{1, 500, 999, 1000} {
		plan, err := NewPlan(Dimensions{ScrollHeight: scrollHeight, ViewportHeight: 1000, ViewportWidth: 800}, 75)
		if err != nil {
			t.Fatalf("NewPlan(%d): %v", scrollHeight, err)
		}
		if !reflect.DeepEqual(plan.Offsets, []int{0}) {
			t.Errorf("NewPlan(%d) offsets = %v, want [0]", scrollHeight, plan.Offsets)
		}
	}
}

func TestNewPlanOffsets(t *testing.T) {
	plan, err := NewPlan(Dimensions{ScrollHeight: 3000, ViewportHeight: 1000, ViewportWidth: 800}, 75)
	if err != nil {
		t.Fatal(err)
	}
	want := []int{0, 925, 1850, 2000}
	if !reflect.DeepEqual(plan.Offsets, want) {
		t.Errorf("offsets = %v, want %v", plan.Offsets, want)
	}
}

func TestNewPlanExactStride(t *testing.T) {
	// Surface bottom lands exactly on a stride boundary: no duplicate offset.
	plan, err := NewPlan(Dimensions{ScrollHeight: 2000, ViewportHeight: 1000, ViewportWidth: 800}, 0)
	if err != nil {
		t.Fatal(err)
	}
	want := []int{0, 1000}
	if !reflect.DeepEqual(plan.Offsets, want) {
		t.Errorf("offsets = %v, want %v", plan.Offsets, want)
	}
}

func TestNewPlanMaxCapturesClamp(t *testing.T) {
	plan, err := NewPlan(Dimensions{ScrollHeight: 1_000_000, ViewportHeight: 1000, ViewportWidth: 800}, 75)
	if err != nil {
		t.Fatal(err)
	}
	if len(plan.Offsets) != MaxCaptures {
		t.Fatalf("offsets = %d, want %d", len(plan.Offsets), MaxCaptures)
	}
	for i := 1; i < len(plan.Offsets); i++ {
		if plan.Offsets[i] <= plan.Offsets[i-1] {
			t.Fatalf("offsets not strictly increasing at %d: %d <= %d", i, plan.Offsets[i], plan.Offsets[i-1])
		}
	}
}

func TestNewPlanInvalidGeometry(t *testing.T) {
	tests := []struct {
		name    string
		dims    Dimensions
		overlap int
	}{
		{"overlap equals viewport", Dimensions{ScrollHeight: 3000, ViewportHeight: 100}, 100},
		{"overlap above viewport", Dimensions{ScrollHeight: 3000, ViewportHeight: 100}, 150},
		{"negative overlap", Dimensions{ScrollHeight: 3000, ViewportHeight: 100}, -1},
		{"zero viewport", Dimensions{ScrollHeight: 3000, ViewportHeight: 0}, 10},
		{"zero surface", Dimensions{ScrollHeight: 0, ViewportHeight: 100}, 10},
	}
	for _, tt := range tests {
		if _, err := NewPlan(tt.dims, tt.overlap); !errors.Is(err, ErrPlanning) {
			t.Errorf("%s: err = %v, want ErrPlanning", tt.name, err)
		}
	}
}

func TestNewPlanOversizeFlag(t *testing.T) {
	plan, err := NewPlan(Dimensions{ScrollHeight: 40000, ViewportHeight: 1000, ViewportWidth: 800}, 75)
	if err != nil {
		t.Fatal(err)
	}
	if !plan.OversizeSurface {
		t.Error("expected oversize flag for 40000px surface")
	}

	plan, err = NewPlan(Dimensions{ScrollHeight: 3000, ViewportHeight: 1000, ViewportWidth: 800}, 75)
	if err != nil {
		t.Fatal(err)
	}
	if plan.OversizeSurface {
		t.Error("unexpected oversize flag for 3000px surface")
	}
}

func TestNewPlanDeterministic(t *testing.T) {
	dims := Dimensions{ScrollHeight: 12345, ViewportHeight: 900, ViewportWidth: 800}
	a, err := NewPlan(dims, 75)
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewPlan(dims, 75)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("plan generation is not deterministic")
	}
}
