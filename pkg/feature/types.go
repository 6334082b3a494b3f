package feature

import "slices"

// GeoJSON types (RFC 7946). LineString positions carry a third element, the epoch
// timestamp of the sample, so coordinates are kept as plain float slices.
type FeatureCollection struct {
	Type       string               `json:"type"`
	Properties CollectionProperties `json:"properties"`
	Features   []Feature            `json:"features"`
}

// CollectionProperties is the metadata block of the output document.
type CollectionProperties struct {
	Title string  `json:"Title"`
	Vol   float64 `json:"vol"`
}

type Feature struct {
	Type       string                 `json:"type"`
	ID         *int                   `json:"id,omitempty"`
	Geometry   Geometry               `json:"geometry"`
	Properties map[string]interface{} `json:"properties"`
}

type Geometry struct {
	Type        string      `json:"type"`
	Coordinates interface{} `json:"coordinates"`
}

type Position []float64

const (
	TypeFeatureCollection = "FeatureCollection"
	TypeFeature           = "Feature"
	TypePoint             = "Point"
	TypeLineString        = "LineString"
)

// Marker symbols (Mapbox simplestyle / Maki names).
const (
	SymbolEntrance  = "entrance-alt1"
	SymbolRacetrack = "racetrack"
	SymbolGate      = "gate"
	SymbolArrow     = "arrow"
	SymbolCircle    = "circle"
)

const (
	MarkerSmall = "small"
	MarkerLarge = "large"
)

// Line styling shared by every segment.
const (
	StrokeWidth   = 5
	StrokeOpacity = 1
)

// FinishSymbols lists the marker symbols accepted for the finish point.
var FinishSymbols = []string{SymbolEntrance, SymbolRacetrack, SymbolGate, SymbolArrow}

// IsFinishSymbol reports whether s may be used to mark the finish.
func IsFinishSymbol(s string) bool {
	return slices.Contains(FinishSymbols, s)
}
