package pipeline

import (
	"fmt"
	"log/slog"

	"track2geojson/pkg/color"
	"track2geojson/pkg/detector"
	"track2geojson/pkg/feature"
	"track2geojson/pkg/segmenter"
	"track2geojson/pkg/types"
)

// Options controls a single conversion.
type Options struct {
	Threshold    float64
	Policy       detector.DuplicatePolicy
	FinishSymbol string
	// Colors defaults to an unseeded random generator.
	Colors color.Generator
	Meta   feature.CollectionProperties
}

// Result holds every intermediate product of a conversion.
type Result struct {
	Track         *types.Track
	TurningPoints []types.TurningPoint
	Boundaries    []types.Boundary
	Segments      []types.Segment
	Collection    *feature.FeatureCollection
	// Document is the encoded collection; only set by Pipeline.Run.
	Document []byte
}

// Convert detects turning points on an already sorted track and lays out the feature collection.
// It performs no I/O.
func Convert(track *types.Track, opts Options) (*Result, error) {
	n := track.Len()
	if n < 2 {
		return nil, fmt.Errorf("track has %d samples, need at least 2: %w", n, types.ErrInsufficientData)
	}
	if n < 3 {
		slog.Warn("Track too short for turning point detection, emitting a single segment", "samples", n)
	}

	det := detector.Detector{Threshold: opts.Threshold, Policy: opts.Policy}
	if err := det.Validate(); err != nil {
		return nil, err
	}
	turningPoints, err := det.Detect(track.Samples())
	if err != nil {
		return nil, fmt.Errorf("failed to detect turning points: %w", err)
	}

	colors := opts.Colors
	if colors == nil {
		colors = color.NewRandom()
	}
	boundaries := segmenter.Boundaries(track, turningPoints, colors)

	segments, err := segmenter.BuildSegments(n, boundaries)
	if err != nil {
		return nil, fmt.Errorf("failed to build segments: %w", err)
	}

	collection, err := feature.Builder{FinishSymbol: opts.FinishSymbol}.Collection(opts.Meta, track, boundaries, segments)
	if err != nil {
		return nil, fmt.Errorf("failed to build feature collection: %w", err)
	}

	return &Result{
		Track:         track,
		TurningPoints: turningPoints,
		Boundaries:    boundaries,
		Segments:      segments,
		Collection:    collection,
	}, nil
}
