package types

import (
	"time"

	"github.com/paulmach/orb"
)

// Input field names. The upstream tracker exports use Romanian keys.
const (
	FieldLatitude   = "latitudine"
	FieldLongitude  = "longitudine"
	FieldEmittedAt  = "data_emitere"
	FieldReceivedAt = "data_primire"
)

// Sample is one timestamped position reading.
type Sample struct {
	Latitude   float64 `json:"latitudine"`
	Longitude  float64 `json:"longitudine"`
	EmittedAt  string  `json:"data_emitere"`
	ReceivedAt string  `json:"data_primire"`

	// Emitted is EmittedAt parsed; Timestamp is the same instant in Unix seconds.
	Emitted   time.Time `json:"-"`
	Timestamp int64     `json:"-"`

	// Seq is the position of the record in the input document.
	Seq int `json:"-"`
}

// NewSample builds a Sample, parsing emittedAt. The returned error is a *ParseError.
func NewSample(seq int, lat, lon float64, emittedAt, receivedAt string) (Sample, error) {
	emitted, err := ParseTimestamp(emittedAt)
	if err != nil {
		return Sample{}, &ParseError{Record: seq, Field: FieldEmittedAt, Value: emittedAt, Err: err}
	}
	return Sample{
		Latitude:   lat,
		Longitude:  lon,
		EmittedAt:  emittedAt,
		ReceivedAt: receivedAt,
		Emitted:    emitted,
		Timestamp:  emitted.Unix(),
		Seq:        seq,
	}, nil
}

// Point returns the sample position as (lon, lat).
func (s Sample) Point() orb.Point {
	return orb.Point{s.Longitude, s.Latitude}
}
