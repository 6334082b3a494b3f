// Package detector finds turning points: interior samples where the heading between the
// incoming and outgoing displacement changes by more than a threshold angle.
package detector

import (
	"errors"
	"fmt"
	"math"

	"track2geojson/pkg/geometry"
	"track2geojson/pkg/types"
)

// DefaultThreshold is the minimum heading change, in degrees, that counts as a turn.
const DefaultThreshold = 30.0

// DuplicatePolicy decides what happens when consecutive samples share a position.
type DuplicatePolicy string

const (
	// PolicySkip treats an interior sample next to a duplicate position as "no turn".
	PolicySkip DuplicatePolicy = "skip"
	// PolicyFail aborts detection with ErrDegenerateVector.
	PolicyFail DuplicatePolicy = "fail"
)

// ParseDuplicatePolicy accepts "skip" or "fail"; an empty string means skip.
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch DuplicatePolicy(s) {
	case "", PolicySkip:
		return PolicySkip, nil
	case PolicyFail:
		return PolicyFail, nil
	default:
		return "", fmt.Errorf("unknown duplicate policy %q (want skip or fail): %w", s, types.ErrValidation)
	}
}

type Detector struct {
	Threshold float64
	Policy    DuplicatePolicy
}

// New returns a Detector with the given threshold and the skip policy.
func New(threshold float64) Detector {
	return Detector{Threshold: threshold, Policy: PolicySkip}
}

func (d Detector) Validate() error {
	if math.IsNaN(d.Threshold) || d.Threshold < 0 || d.Threshold > 180 {
		return fmt.Errorf("threshold %v outside [0, 180]: %w", d.Threshold, types.ErrValidation)
	}
	if _, err := ParseDuplicatePolicy(string(d.Policy)); err != nil {
		return err
	}
	return nil
}

// Detect scans every interior sample once, in order. A sample is a turning point when the
// angle between (i-1 -> i) and (i -> i+1) is strictly greater than the threshold.
// Neighbouring samples may both qualify. Fewer than three samples yield no turning points.
func (d Detector) Detect(samples []types.Sample) ([]types.TurningPoint, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	var turningPoints []types.TurningPoint
	for i := 1; i < len(samples)-1; i++ {
		v1 := geometry.Displacement(samples[i-1].Point(), samples[i].Point())
		v2 := geometry.Displacement(samples[i].Point(), samples[i+1].Point())

		angle, err := geometry.AngleBetween(v1, v2)
		if err != nil {
			if errors.Is(err, types.ErrDegenerateVector) && d.Policy != PolicyFail {
				continue
			}
			return nil, fmt.Errorf("sample %d (emitted %s): %w", i, samples[i].EmittedAt, err)
		}

		if angle > d.Threshold {
			turningPoints = append(turningPoints, types.TurningPoint{
				Index:  i,
				Angle:  angle,
				Sample: samples[i],
			})
		}
	}

	return turningPoints, nil
}
