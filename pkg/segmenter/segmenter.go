// Package segmenter cuts a track into coloured segments at its boundaries: the start sample,
// every turning point, and the finish sample.
package segmenter

import (
	"fmt"

	"track2geojson/pkg/color"
	"track2geojson/pkg/types"
)

// Boundaries lists start, turning points and finish in index order, each with a fresh colour.
// Colours are drawn in that same order. A single-sample track has a start and no finish.
func Boundaries(track *types.Track, turningPoints []types.TurningPoint, colors color.Generator) []types.Boundary {
	if track.Len() == 0 {
		return nil
	}

	boundaries := make([]types.Boundary, 0, len(turningPoints)+2)
	boundaries = append(boundaries, types.Boundary{Index: 0, Color: colors.Next(), Role: types.RoleStart})
	for _, tp := range turningPoints {
		boundaries = append(boundaries, types.Boundary{
			Index: tp.Index,
			Color: colors.Next(),
			Role:  types.RoleTurn,
			Angle: tp.Angle,
		})
	}
	if track.LastIndex() > 0 {
		boundaries = append(boundaries, types.Boundary{Index: track.LastIndex(), Color: colors.Next(), Role: types.RoleFinish})
	}
	return boundaries
}

// BuildSegments joins each pair of consecutive boundaries into a segment spanning
// [prev.Index, curr.Index] and painted with prev's colour, so a turning point's colour
// continues through the leg that leaves it.
func BuildSegments(sampleCount int, boundaries []types.Boundary) ([]types.Segment, error) {
	if sampleCount < 2 {
		return nil, fmt.Errorf("%d samples cannot form a segment: %w", sampleCount, types.ErrInsufficientData)
	}
	if len(boundaries) < 2 {
		return nil, fmt.Errorf("need at least 2 boundaries, got %d", len(boundaries))
	}
	if first := boundaries[0].Index; first != 0 {
		return nil, fmt.Errorf("first boundary at index %d, want 0", first)
	}
	if last := boundaries[len(boundaries)-1].Index; last != sampleCount-1 {
		return nil, fmt.Errorf("last boundary at index %d, want %d", last, sampleCount-1)
	}

	segments := make([]types.Segment, 0, len(boundaries)-1)
	for i := 1; i < len(boundaries); i++ {
		prev, curr := boundaries[i-1], boundaries[i]
		if curr.Index <= prev.Index {
			return nil, fmt.Errorf("boundary %d at index %d does not follow index %d", i, curr.Index, prev.Index)
		}
		segments = append(segments, types.Segment{
			StartIndex: prev.Index,
			EndIndex:   curr.Index,
			Color:      prev.Color,
		})
	}
	return segments, nil
}
