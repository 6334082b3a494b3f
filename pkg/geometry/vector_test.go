package geometry

import (
	"errors"
	"math"
	"testing"

	"track2geojson/pkg/types"

	"github.com/paulmach/orb"
)

// acos is ill-conditioned near ±1, so near-parallel results carry ~1e-6 degrees of noise.
const tolerance = 1e-5

func TestAngleBetween(t *testing.T) {
	tests := []struct {
		name     string
		v1, v2   Vector2
		expected float64
	}{
		{"same direction", Vector2{1, 0}, Vector2{1, 0}, 0},
		{"same direction different length", Vector2{0.5, 0.5}, Vector2{3, 3}, 0},
		{"opposite", Vector2{1, 0}, Vector2{-1, 0}, 180},
		{"perpendicular left", Vector2{1, 0}, Vector2{0, 1}, 90},
		{"perpendicular right", Vector2{0, 1}, Vector2{1, 0}, 90},
		{"forty five", Vector2{1, 0}, Vector2{1, 1}, 45},
		{"one thirty five", Vector2{1, 0}, Vector2{-1, 1}, 135},
		{"tiny gps deltas", Vector2{0.00001, 0}, Vector2{0, 0.00001}, 90},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AngleBetween(tt.v1, tt.v2)
			if err != nil {
				t.Fatalf("AngleBetween(%v, %v) unexpected error: %v", tt.v1, tt.v2, err)
			}
			if math.Abs(got-tt.expected) > tolerance {
				t.Errorf("AngleBetween(%v, %v) = %v, want %v", tt.v1, tt.v2, got, tt.expected)
			}
		})
	}
}

func TestAngleBetween_ClampsRoundingNoise(t *testing.T) {
	// These pairs produce a cosine a hair above 1 or below -1 in float64.
	tests := []struct {
		name     string
		v1, v2   Vector2
		expected float64
	}{
		{"parallel", Vector2{0.1, 0.3}, Vector2{0.1, 0.3}, 0},
		{"parallel scaled", Vector2{1e-7, 3e-7}, Vector2{3e-7, 9e-7}, 0},
		{"antiparallel", Vector2{0.1, 0.3}, Vector2{-0.1, -0.3}, 180},
		{"antiparallel scaled", Vector2{0.7, 0.1}, Vector2{-2.1, -0.3}, 180},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AngleBetween(tt.v1, tt.v2)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.IsNaN(got) {
				t.Fatalf("AngleBetween(%v, %v) = NaN", tt.v1, tt.v2)
			}
			if math.Abs(got-tt.expected) > tolerance {
				t.Errorf("AngleBetween(%v, %v) = %v, want %v", tt.v1, tt.v2, got, tt.expected)
			}
		})
	}
}

func TestClampUnit(t *testing.T) {
	tests := []struct {
		input    float64
		expected float64
	}{
		{1.0000000000000002, 1},
		{-1.0000000000000002, -1},
		{0.5, 0.5},
		{1, 1},
		{-1, -1},
	}

	for _, tt := range tests {
		got := clampUnit(tt.input)
		if got != tt.expected {
			t.Errorf("clampUnit(%v) = %v, want %v", tt.input, got, tt.expected)
		}
		if math.IsNaN(math.Acos(got)) {
			t.Errorf("acos(clampUnit(%v)) is NaN", tt.input)
		}
	}
}

func TestAngleBetween_RangeSweep(t *testing.T) {
	for deg := 0; deg < 360; deg += 7 {
		rad := float64(deg) * math.Pi / 180
		v2 := Vector2{math.Cos(rad) * 2.5, math.Sin(rad) * 2.5}
		got, err := AngleBetween(Vector2{1, 0}, v2)
		if err != nil {
			t.Fatalf("deg=%d: unexpected error: %v", deg, err)
		}
		if got < 0 || got > 180 {
			t.Errorf("deg=%d: angle %v outside [0, 180]", deg, got)
		}
		want := float64(deg)
		if want > 180 {
			want = 360 - want
		}
		if math.Abs(got-want) > tolerance {
			t.Errorf("deg=%d: angle = %v, want %v", deg, got, want)
		}
	}
}

func TestAngleBetween_Degenerate(t *testing.T) {
	tests := []struct {
		name   string
		v1, v2 Vector2
	}{
		{"first zero", Vector2{0, 0}, Vector2{1, 0}},
		{"second zero", Vector2{1, 0}, Vector2{0, 0}},
		{"both zero", Vector2{}, Vector2{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := AngleBetween(tt.v1, tt.v2)
			if !errors.Is(err, types.ErrDegenerateVector) {
				t.Errorf("expected ErrDegenerateVector, got %v", err)
			}
		})
	}
}

func TestDisplacement(t *testing.T) {
	v := Displacement(orb.Point{26.1, 44.4}, orb.Point{26.3, 44.1})
	if math.Abs(v.DX-0.2) > tolerance || math.Abs(v.DY+0.3) > tolerance {
		t.Errorf("Displacement = %+v, want {DX:0.2 DY:-0.3}", v)
	}
	if !Displacement(orb.Point{1, 2}, orb.Point{1, 2}).IsZero() {
		t.Error("Displacement between equal points should be zero")
	}
}
