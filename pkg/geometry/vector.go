// Package geometry holds the planar vector math used for turning-point detection.
// Positions are treated as (lon, lat) = (x, y) without projection.
package geometry

import (
	"fmt"
	"math"

	"track2geojson/pkg/types"

	"github.com/paulmach/orb"
)

// Vector2 is a displacement in (lon, lat) degrees.
type Vector2 struct {
	DX float64
	DY float64
}

// Displacement returns the vector from one position to the next.
func Displacement(from, to orb.Point) Vector2 {
	return Vector2{DX: to.Lon() - from.Lon(), DY: to.Lat() - from.Lat()}
}

func (v Vector2) Magnitude() float64 {
	return math.Hypot(v.DX, v.DY)
}

func (v Vector2) Dot(o Vector2) float64 {
	return v.DX*o.DX + v.DY*o.DY
}

// IsZero reports a zero-length displacement, i.e. two consecutive identical positions.
func (v Vector2) IsZero() bool {
	return v.DX == 0 && v.DY == 0
}

// AngleBetween returns the angle between v1 and v2 in degrees, in [0, 180].
// A zero-length vector has no direction and yields ErrDegenerateVector.
func AngleBetween(v1, v2 Vector2) (float64, error) {
	m1, m2 := v1.Magnitude(), v2.Magnitude()
	if m1 == 0 || m2 == 0 {
		return 0, fmt.Errorf("angle between %v and %v: %w", v1, v2, types.ErrDegenerateVector)
	}

	cos := clampUnit(v1.Dot(v2) / (m1 * m2))
	return math.Acos(cos) * 180 / math.Pi, nil
}

// clampUnit bounds x to [-1, 1]. Rounding can push a cosine just outside acos' domain
// (e.g. 1.0000000000000002), where acos returns NaN.
func clampUnit(x float64) float64 {
	return math.Max(-1, math.Min(1, x))
}
