package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"track2geojson/pkg/color"
	"track2geojson/pkg/config"
	"track2geojson/pkg/detector"
	"track2geojson/pkg/feature"
	"track2geojson/pkg/metrics"
	"track2geojson/pkg/otel"
	"track2geojson/pkg/sink"
	"track2geojson/pkg/source"
	"track2geojson/pkg/types"

	"github.com/google/uuid"
	otelapi "go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Pipeline runs one conversion: read, decode, sort, convert, encode, write.
type Pipeline struct {
	config config.Config
	opts   Options
	reader source.Reader
	writer sink.Writer
	stdout io.Writer
	runID  string
	tracer trace.Tracer
	logger *slog.Logger
}

// Option customises a Pipeline built by New.
type Option func(*Pipeline)

// WithRunID sets the run identifier attached to logs and spans. New generates one otherwise.
func WithRunID(id string) Option {
	return func(p *Pipeline) { p.runID = id }
}

// WithColors replaces the colour generator chosen from the configured seed.
func WithColors(g color.Generator) Option {
	return func(p *Pipeline) { p.opts.Colors = g }
}

// WithStdout redirects the dry-run report.
func WithStdout(w io.Writer) Option {
	return func(p *Pipeline) { p.stdout = w }
}

func WithReader(r source.Reader) Option {
	return func(p *Pipeline) { p.reader = r }
}

func WithWriter(w sink.Writer) Option {
	return func(p *Pipeline) { p.writer = w }
}

func New(cfg config.Config, options ...Option) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	policy, err := detector.ParseDuplicatePolicy(cfg.DuplicatePolicy)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		config: cfg,
		opts: Options{
			Threshold:    cfg.ThresholdDegrees,
			Policy:       policy,
			FinishSymbol: cfg.FinishSymbol,
			Meta: feature.CollectionProperties{
				Title: cfg.ResolvedTitle(),
				Vol:   cfg.Vol,
			},
		},
		stdout: os.Stdout,
		tracer: otelapi.Tracer("pipeline"),
	}
	if cfg.ColorSeed != 0 {
		p.opts.Colors = color.NewSeeded(cfg.ColorSeed)
	}

	for _, opt := range options {
		opt(p)
	}

	if p.runID == "" {
		p.runID = uuid.NewString()
	}
	if p.reader == nil {
		p.reader = source.Open(cfg.Input)
	}
	// Only create a writer if not in dry run mode
	if p.writer == nil && !cfg.DryRun {
		p.writer = sink.Open(cfg.Output, cfg.OutputUser, cfg.OutputPassword)
	}
	p.logger = slog.With("run_id", p.runID)

	return p, nil
}

// RunID identifies this conversion in logs, spans and profiles.
func (p *Pipeline) RunID() string {
	return p.runID
}

// Run performs the conversion. Any failure aborts the run; nothing is written unless every
// earlier stage succeeded.
func (p *Pipeline) Run(ctx context.Context) (result *Result, err error) {
	ctx, span := p.tracer.Start(ctx, "pipeline.run",
		trace.WithAttributes(
			attribute.String("run.id", p.runID),
			attribute.String("input", p.reader.Location()),
			attribute.Bool("dry_run", p.config.DryRun),
			attribute.Float64("threshold_degrees", p.opts.Threshold),
			attribute.String("duplicate_policy", string(p.opts.Policy)),
		),
	)
	defer span.End()

	start := time.Now()
	p.logger.Info("Starting conversion", "input", p.reader.Location(), "threshold", p.opts.Threshold, "dry_run", p.config.DryRun)

	defer func() {
		status := "success"
		if err != nil {
			status = "error"
			kind := otel.RecordKindError(span, err)
			p.logger.Error("Conversion failed", "error", err, "error_type", kind)
		} else {
			otel.SetSpanOk(span)
			metrics.RecordLastSuccessTimestamp()
		}
		metrics.ConversionRunsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
		metrics.ConversionDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(attribute.String("status", status)))
	}()

	var data []byte
	if err := p.stage(ctx, "read", func(ctx context.Context) error {
		var err error
		data, err = p.reader.Read(ctx)
		if err != nil {
			return fmt.Errorf("failed to read input %s: %w", p.reader.Location(), err)
		}
		metrics.InputPayloadSize.Record(ctx, int64(len(data)))
		return nil
	}); err != nil {
		return nil, err
	}

	var track *types.Track
	if err := p.stage(ctx, "decode", func(ctx context.Context) error {
		format := source.DetectFormat(p.reader.Location(), data)
		samples, err := source.Decode(format, data)
		if err != nil {
			return fmt.Errorf("failed to decode %s input: %w", format, err)
		}
		metrics.SamplesDecoded.Add(ctx, int64(len(samples)), metric.WithAttributes(attribute.String("format", string(format))))

		track = types.NewTrack(samples)
		p.logger.Debug("Decoded samples",
			"format", format,
			"samples", track.Len(),
			"reordered", countReordered(track),
		)
		return nil
	}); err != nil {
		return nil, err
	}

	if err := p.stage(ctx, "convert", func(ctx context.Context) error {
		var err error
		result, err = Convert(track, p.opts)
		if err != nil {
			return err
		}

		lengthMeters := track.LengthMeters()
		metrics.TrackTurningPoints.Record(ctx, int64(len(result.TurningPoints)))
		metrics.TrackSegments.Record(ctx, int64(len(result.Segments)))
		metrics.TrackLength.Record(ctx, lengthMeters)

		span.SetAttributes(
			attribute.Int("samples", track.Len()),
			attribute.Int("turning_points", len(result.TurningPoints)),
			attribute.Int("segments", len(result.Segments)),
			attribute.Float64("track.length_m", lengthMeters),
		)
		return nil
	}); err != nil {
		return nil, err
	}

	if err := p.stage(ctx, "encode", func(ctx context.Context) error {
		doc, err := Encode(result.Collection)
		if err != nil {
			return err
		}
		result.Document = doc
		metrics.OutputPayloadSize.Record(ctx, int64(len(doc)))
		return nil
	}); err != nil {
		return nil, err
	}

	if p.config.DryRun {
		if err := p.stage(ctx, "dry_run", func(ctx context.Context) error {
			return p.printDryRun(result)
		}); err != nil {
			return nil, err
		}
		p.logger.Info("Dry run complete", "samples", track.Len(), "segments", len(result.Segments), "duration", time.Since(start))
		return result, nil
	}

	if err := p.stage(ctx, "write", func(ctx context.Context) error {
		if err := p.writer.Write(ctx, result.Document); err != nil {
			return fmt.Errorf("failed to write output %s: %w", p.writer.Location(), err)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	p.logger.Info("Conversion complete",
		"output", p.writer.Location(),
		"samples", track.Len(),
		"turning_points", len(result.TurningPoints),
		"segments", len(result.Segments),
		"duration", time.Since(start),
	)
	return result, nil
}

// stage runs fn in its own span and records its duration, and its error kind on failure.
func (p *Pipeline) stage(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	ctx, span := p.tracer.Start(ctx, "pipeline."+name)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	metrics.ConversionStageDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(attribute.String("stage", name)))

	if err != nil {
		kind := otel.RecordKindError(span, err)
		metrics.ConversionErrorsTotal.Add(ctx, 1, metric.WithAttributes(
			attribute.String("stage", name),
			attribute.String("error.type", kind),
		))
		return err
	}
	otel.SetSpanOk(span)
	return nil
}

// Encode renders the collection with two-space indentation and a trailing newline.
// HTML characters in titles and timestamps are written as-is.
func Encode(fc *feature.FeatureCollection) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(fc); err != nil {
		return nil, fmt.Errorf("failed to encode feature collection: %w", err)
	}
	return buf.Bytes(), nil
}

func (p *Pipeline) printDryRun(result *Result) error {
	track := result.Track
	bound := track.Bound()

	fmt.Fprintf(p.stdout, "\n=== DRY RUN - Track %q ===\n", result.Collection.Properties.Title)
	fmt.Fprintf(p.stdout, "Input: %s\n", p.reader.Location())
	fmt.Fprintf(p.stdout, "Samples: %d\n", track.Len())
	fmt.Fprintf(p.stdout, "Length: %.3f km\n", track.LengthMeters()/1000)
	fmt.Fprintf(p.stdout, "Bounds: (%.6f, %.6f) - (%.6f, %.6f)\n", bound.Min.Lat(), bound.Min.Lon(), bound.Max.Lat(), bound.Max.Lon())
	fmt.Fprintf(p.stdout, "Turning Points: %d\n", len(result.TurningPoints))
	for i, tp := range result.TurningPoints {
		fmt.Fprintf(p.stdout, "  %d. Index: %d, Angle: %.2f°, Emitted: %s\n", i+1, tp.Index, tp.Angle, tp.Sample.EmittedAt)
	}
	fmt.Fprintf(p.stdout, "Segments: %d\n", len(result.Segments))
	for i, seg := range result.Segments {
		fmt.Fprintf(p.stdout, "  %d. [%d, %d] %s\n", i+1, seg.StartIndex, seg.EndIndex, seg.Color)
	}

	fmt.Fprintln(p.stdout, "\nGeoJSON:")
	fmt.Fprintln(p.stdout, "----------------------------------------")
	if _, err := p.stdout.Write(result.Document); err != nil {
		return fmt.Errorf("failed to print dry run document: %w: %w", types.ErrIO, err)
	}
	_, err := fmt.Fprintln(p.stdout, "=== END DRY RUN ===")
	return err
}

// countReordered reports how many samples the sort moved away from their input position.
func countReordered(track *types.Track) int {
	moved := 0
	for i, s := range track.Samples() {
		if s.Seq != i {
			moved++
		}
	}
	return moved
}
