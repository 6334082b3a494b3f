// Package feature maps segments and boundary samples onto GeoJSON features styled with
// simplestyle properties (stroke, marker-color, marker-symbol, ...).
package feature

import (
	"fmt"

	"track2geojson/pkg/types"
)

// Builder turns segments and boundaries into features.
type Builder struct {
	// FinishSymbol is the marker symbol of the finish point; empty means SymbolEntrance.
	FinishSymbol string
}

func (b Builder) finishSymbol() string {
	if b.FinishSymbol == "" {
		return SymbolEntrance
	}
	return b.FinishSymbol
}

// LineString draws one segment: [lon, lat, epochSeconds] for every sample in the range.
func (b Builder) LineString(track *types.Track, seg types.Segment) Feature {
	coords := make([]Position, 0, seg.Len())
	for i := seg.StartIndex; i <= seg.EndIndex; i++ {
		s := track.At(i)
		coords = append(coords, Position{s.Longitude, s.Latitude, float64(s.Timestamp)})
	}

	return Feature{
		Type: TypeFeature,
		Geometry: Geometry{
			Type:        TypeLineString,
			Coordinates: coords,
		},
		Properties: map[string]interface{}{
			"stroke":         seg.Color,
			"stroke-width":   StrokeWidth,
			"stroke-opacity": StrokeOpacity,
		},
	}
}

// Point marks a boundary sample. Turning points get a small circle plus their angle;
// start and finish get a large marker.
func (b Builder) Point(track *types.Track, boundary types.Boundary) Feature {
	s := track.At(boundary.Index)
	id := boundary.Index

	props := map[string]interface{}{
		"timestamp":    s.Timestamp,
		"data_emitere": s.EmittedAt,
		"data_primire": s.ReceivedAt,
		"marker-color": boundary.Color,
	}

	switch boundary.Role {
	case types.RoleTurn:
		props["marker-size"] = MarkerSmall
		props["marker-symbol"] = SymbolCircle
		props["turning_angle"] = boundary.Angle
		props["dev-index"] = boundary.Index
		props["dev-color"] = boundary.Color
	case types.RoleFinish:
		props["marker-size"] = MarkerLarge
		props["marker-symbol"] = b.finishSymbol()
	default:
		props["marker-size"] = MarkerLarge
		props["marker-symbol"] = SymbolEntrance
	}

	return Feature{
		Type: TypeFeature,
		ID:   &id,
		Geometry: Geometry{
			Type:        TypePoint,
			Coordinates: Position{s.Longitude, s.Latitude},
		},
		Properties: props,
	}
}

// Collection lays out every segment line first, in track order, followed by the boundary
// points (start, turning points, finish).
func (b Builder) Collection(meta CollectionProperties, track *types.Track, boundaries []types.Boundary, segments []types.Segment) (*FeatureCollection, error) {
	features := make([]Feature, 0, len(segments)+len(boundaries))
	for _, seg := range segments {
		if seg.StartIndex < 0 || seg.EndIndex >= track.Len() || seg.StartIndex > seg.EndIndex {
			return nil, fmt.Errorf("segment [%d, %d] outside track of %d samples", seg.StartIndex, seg.EndIndex, track.Len())
		}
		features = append(features, b.LineString(track, seg))
	}
	for _, boundary := range boundaries {
		if boundary.Index < 0 || boundary.Index >= track.Len() {
			return nil, fmt.Errorf("boundary index %d outside track of %d samples", boundary.Index, track.Len())
		}
		features = append(features, b.Point(track, boundary))
	}

	return &FeatureCollection{
		Type:       TypeFeatureCollection,
		Properties: meta,
		Features:   features,
	}, nil
}
