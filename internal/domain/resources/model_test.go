package resources

import (
	"math"
	"testing"
)

func TestState_ApplyDelta(t *testing.T) {
	base := State{Health: 10, Vitality: 5, MaxVitality: 8, Travel: 2, MaxTravel: 4, Reserve: 10, MaxReserve: 20, Progress: 1}

	tests := []struct {
		name     string
		field    Field
		delta    int
		clampMax bool
		check    func(State) bool
	}{
		{"current clamps to max", FieldVitality, +10, true, func(s State) bool { return s.Vitality == 8 }},
		{"current without clamp", FieldVitality, +10, false, func(s State) bool { return s.Vitality == 15 }},
		{"current floors at zero", FieldTravel, -9, true, func(s State) bool { return s.Travel == 0 }},
		{"health uncapped", FieldHealth, +100, true, func(s State) bool { return s.Health == 110 }},
		{"health floors at zero", FieldHealth, -100, true, func(s State) bool { return s.Health == 0 }},
		{"progress floors at zero", FieldProgress, -5, true, func(s State) bool { return s.Progress == 0 }},
		{"max floors at zero", FieldMaxReserve, -50, true, func(s State) bool { return s.MaxReserve == 0 && s.Reserve == 0 }},
		{"lowering max drags current", FieldMaxVitality, -5, true, func(s State) bool { return s.MaxVitality == 3 && s.Vitality == 3 }},
		{"raising max keeps current", FieldMaxTravel, +6, true, func(s State) bool { return s.MaxTravel == 10 && s.Travel == 2 }},
		{"huge delta saturates", FieldHealth, math.MaxInt, true, func(s State) bool { return s.Health == MaxValue }},
		{"huge negative delta floors", FieldProgress, math.MinInt, true, func(s State) bool { return s.Progress == 0 }},
		{"max saturates", FieldMaxReserve, math.MaxInt, false, func(s State) bool { return s.MaxReserve == MaxValue && s.Reserve == 10 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := base.ApplyDelta(tt.field, tt.delta, tt.clampMax)
			if !tt.check(got) {
				t.Fatalf("unexpected state: %+v", got)
			}
		})
	}

	if base.Vitality != 5 {
		t.Fatalf("ApplyDelta must not mutate receiver")
	}
}

func TestState_Clamp(t *testing.T) {
	s := State{Health: -1, Vitality: 9, MaxVitality: 4, Travel: -2, MaxTravel: 3, Reserve: 7, MaxReserve: -1}.Clamp()
	if s.Health != 0 || s.Vitality != 4 || s.Travel != 0 || s.Reserve != 0 || s.MaxReserve != 0 {
		t.Fatalf("unexpected clamp: %+v", s)
	}

	s = State{Health: MaxValue + 5, Progress: math.MaxInt}.Clamp()
	if s.Health != MaxValue || s.Progress != MaxValue {
		t.Fatalf("expected values capped at MaxValue: %+v", s)
	}
}

func TestDiff_OnlyChangedFields(t *testing.T) {
	prev := State{Reserve: 10, MaxReserve: 20, Health: 5}
	next := prev
	next.Reserve = 12
	next.Progress = 1

	p := Diff(prev, next)
	if len(p) != 2 || p[FieldReserve] != 12 || p[FieldProgress] != 1 {
		t.Fatalf("unexpected patch: %#v", p)
	}
	if got := prev.WithPatch(p); got != next {
		t.Fatalf("WithPatch mismatch: %+v vs %+v", got, next)
	}
}
