package metrics

import (
	"go.opentelemetry.io/otel/metric"
)

// Conversion Metrics
var (
	// ConversionRunsTotal counts conversion runs by status
	ConversionRunsTotal metric.Int64Counter

	// ConversionDuration measures end-to-end run duration
	ConversionDuration metric.Float64Histogram

	// ConversionStageDuration measures duration per stage (read, decode, convert, encode, write)
	ConversionStageDuration metric.Float64Histogram

	// ConversionErrorsTotal counts errors by stage and kind
	ConversionErrorsTotal metric.Int64Counter
)

// Track Metrics
var (
	// SamplesDecoded counts decoded samples by input format
	SamplesDecoded metric.Int64Counter

	// TrackTurningPoints measures turning points found per track
	TrackTurningPoints metric.Int64Histogram

	// TrackSegments measures segments built per track
	TrackSegments metric.Int64Histogram

	// TrackLength measures the haversine length of each track
	TrackLength metric.Float64Histogram
)

// Payload Metrics
var (
	// InputPayloadSize measures the size of input documents
	InputPayloadSize metric.Int64Histogram

	// OutputPayloadSize measures the size of rendered GeoJSON documents
	OutputPayloadSize metric.Int64Histogram
)

// initializeInstruments creates all metric instruments
func initializeInstruments() error {
	var err error

	ConversionRunsTotal, err = Meter.Int64Counter(
		"conversion.runs.total",
		metric.WithDescription("Total number of conversion runs"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return err
	}

	ConversionDuration, err = Meter.Float64Histogram(
		"conversion.duration",
		metric.WithDescription("Duration of conversion runs"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return err
	}

	ConversionStageDuration, err = Meter.Float64Histogram(
		"conversion.stage.duration",
		metric.WithDescription("Duration per conversion stage"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0),
	)
	if err != nil {
		return err
	}

	ConversionErrorsTotal, err = Meter.Int64Counter(
		"conversion.errors.total",
		metric.WithDescription("Total errors by stage and kind"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return err
	}

	SamplesDecoded, err = Meter.Int64Counter(
		"track.samples.decoded",
		metric.WithDescription("Samples decoded from input documents"),
		metric.WithUnit("{sample}"),
	)
	if err != nil {
		return err
	}

	TrackTurningPoints, err = Meter.Int64Histogram(
		"track.turning_points",
		metric.WithDescription("Turning points detected per track"),
		metric.WithUnit("{point}"),
		metric.WithExplicitBucketBoundaries(0, 1, 2, 5, 10, 25, 50, 100, 250, 500),
	)
	if err != nil {
		return err
	}

	TrackSegments, err = Meter.Int64Histogram(
		"track.segments",
		metric.WithDescription("Segments built per track"),
		metric.WithUnit("{segment}"),
		metric.WithExplicitBucketBoundaries(1, 2, 5, 10, 25, 50, 100, 250, 500),
	)
	if err != nil {
		return err
	}

	TrackLength, err = Meter.Float64Histogram(
		"track.length",
		metric.WithDescription("Haversine length of converted tracks"),
		metric.WithUnit("m"),
		metric.WithExplicitBucketBoundaries(100, 1000, 5000, 10000, 50000, 100000, 500000),
	)
	if err != nil {
		return err
	}

	InputPayloadSize, err = Meter.Int64Histogram(
		"input.payload.size",
		metric.WithDescription("Size of input documents"),
		metric.WithUnit("By"),
		metric.WithExplicitBucketBoundaries(1024, 10240, 102400, 1048576, 10485760), // 1KB to 10MB
	)
	if err != nil {
		return err
	}

	OutputPayloadSize, err = Meter.Int64Histogram(
		"output.payload.size",
		metric.WithDescription("Size of rendered GeoJSON documents"),
		metric.WithUnit("By"),
		metric.WithExplicitBucketBoundaries(1024, 10240, 102400, 1048576, 10485760), // 1KB to 10MB
	)
	if err != nil {
		return err
	}

	return nil
}
