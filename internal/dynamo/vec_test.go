package dynamo

import (
	"math"
	"testing"
)

func TestVec2_Arithmetic(t *testing.T) {
	a := V(1, 2)
	b := V(4, 6)

	if got := a.Add(b); got != V(5, 8) {
		t.Errorf("Add = %v", got)
	}
	if got := b.Sub(a); got != V(3, 4) {
		t.Errorf("Sub = %v", got)
	}
	if got := a.Scale(2); got != V(2, 4) {
		t.Errorf("Scale = %v", got)
	}
	if got := a.Dot(b); got != 16 {
		t.Errorf("Dot = %v", got)
	}
	if got := b.Sub(a).Len(); got != 5 {
		t.Errorf("Len = %v", got)
	}
	if got := b.Sub(a).Len2(); got != 25 {
		t.Errorf("Len2 = %v", got)
	}
}

func TestVec2_Normalize(t *testing.T) {
	if got := (Vec2{}).Normalize(); got != (Vec2{}) {
		t.Errorf("zero vector normalized to %v", got)
	}
	n := V(3, 4).Normalize()
	if math.Abs(n.Len()-1) > 1e-12 {
		t.Errorf("unit length expected, got %v", n.Len())
	}
}

func TestVec2_IsFinite(t *testing.T) {
	tests := []struct {
		name string
		v    Vec2
		want bool
	}{
		{"zero", Vec2{}, true},
		{"normal", V(1, -2), true},
		{"nan x", V(math.NaN(), 0), false},
		{"inf y", V(0, math.Inf(1)), false},
		{"-inf x", V(math.Inf(-1), 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.IsFinite(); got != tt.want {
				t.Errorf("IsFinite() = %v, want %v", got, tt.want)
			}
		})
	}
}
