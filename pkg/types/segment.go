package types

// TurningPoint is an interior sample where the heading changes by more than the threshold.
type TurningPoint struct {
	Index  int
	Angle  float64
	Sample Sample
}

// Role of a boundary sample.
type Role string

const (
	RoleStart  Role = "start"
	RoleTurn   Role = "turn"
	RoleFinish Role = "finish"
)

// Boundary delimits segments: the start, every turning point, and the finish.
// Angle is only meaningful for RoleTurn.
type Boundary struct {
	Index int
	Color string
	Role  Role
	Angle float64
}

// Segment is an inclusive index range of the track drawn in one colour.
// The end sample of one segment is the start sample of the next.
type Segment struct {
	StartIndex int
	EndIndex   int
	Color      string
}

// Len is the number of samples the segment covers.
func (s Segment) Len() int {
	return s.EndIndex - s.StartIndex + 1
}
