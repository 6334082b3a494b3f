package types

import (
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// Track is the time-ordered sample sequence of one conversion run.
type Track struct {
	samples []Sample
}

// NewTrack copies samples and sorts them by emission instant. Equal instants keep input order.
func NewTrack(samples []Sample) *Track {
	sorted := make([]Sample, len(samples))
	copy(sorted, samples)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Emitted.Before(sorted[j].Emitted)
	})
	return &Track{samples: sorted}
}

// Samples returns the ordered samples. Callers must not modify the slice.
func (t *Track) Samples() []Sample {
	return t.samples
}

func (t *Track) Len() int {
	return len(t.samples)
}

// LastIndex is the index of the finish sample, or -1 for an empty track.
func (t *Track) LastIndex() int {
	return len(t.samples) - 1
}

func (t *Track) At(i int) Sample {
	return t.samples[i]
}

// LineString returns the sample positions in track order.
func (t *Track) LineString() orb.LineString {
	ls := make(orb.LineString, 0, len(t.samples))
	for _, s := range t.samples {
		ls = append(ls, s.Point())
	}
	return ls
}

// Bound is the bounding box of all samples.
func (t *Track) Bound() orb.Bound {
	return t.LineString().Bound()
}

// LengthMeters is the haversine length of the track.
func (t *Track) LengthMeters() float64 {
	if len(t.samples) < 2 {
		return 0
	}
	return geo.Length(t.LineString())
}
