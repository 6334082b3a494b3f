package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"track2geojson/pkg/config"
	"track2geojson/pkg/logging"
	"track2geojson/pkg/metrics"
	"track2geojson/pkg/pipeline"
	"track2geojson/pkg/profiling"
	"track2geojson/pkg/tracing"
	"track2geojson/pkg/types"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel/attribute"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	// .env must be loaded before anything reads the environment
	envErr := godotenv.Load()

	closeLog := logging.InitLogging()
	defer closeLog()

	if envErr != nil {
		slog.Debug("No .env file found (using environment variables)")
	}

	cfg, err := parseConfig(args, os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		var usageErr *usageError
		if errors.As(err, &usageErr) {
			return exitUsage
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitError
	}

	runID := uuid.NewString()

	// Initialize tracing
	shutdownTracing, err := tracing.InitTracing(attribute.String("run.id", runID))
	if err != nil {
		slog.Error("Failed to initialize tracing", "error", err)
		return exitError
	}
	defer shutdownTracing()

	// Initialize metrics
	shutdownMetrics, err := metrics.InitMetrics()
	if err != nil {
		slog.Error("Failed to initialize metrics", "error", err)
		return exitError
	}
	defer shutdownMetrics()

	// Initialize profiling
	shutdownProfiling, err := profiling.InitProfiling(map[string]string{"run_id": runID})
	if err != nil {
		slog.Error("Failed to initialize profiling", "error", err)
		return exitError
	}
	defer shutdownProfiling()

	p, err := pipeline.New(cfg, pipeline.WithRunID(runID))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitError
	}

	// Cancel the run on SIGINT/SIGTERM; a cancelled run writes nothing.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if _, err := p.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error (%s): %v\n", types.ErrorKind(err), err)
		return exitError
	}
	return exitOK
}

// usageError marks command-line mistakes, which exit with status 2.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

// parseConfig layers defaults, the YAML file, TRACK2GEOJSON_* variables and explicitly
// set flags, in that order, and validates the result.
func parseConfig(args []string, stderr io.Writer) (config.Config, error) {
	defaults := config.Default()

	fs := flag.NewFlagSet("track2geojson", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		configPath     = fs.String("config", getEnv("TRACK2GEOJSON_CONFIG", ""), "YAML configuration file")
		input          = fs.String("input", "", "Input file path or http(s) URL (JSON array or XML)")
		output         = fs.String("output", "", "Output file path or http(s) URL for the GeoJSON document")
		threshold      = fs.Float64("threshold", defaults.ThresholdDegrees, "Turning point threshold in degrees, 0-180")
		title          = fs.String("title", "", "Collection title (default: input file name without extension)")
		vol            = fs.Float64("vol", defaults.Vol, "Collection vol property")
		duplicates     = fs.String("duplicates", defaults.DuplicatePolicy, "Consecutive duplicate positions: skip or fail")
		finishSymbol   = fs.String("finish-symbol", defaults.FinishSymbol, "Finish marker symbol: entrance-alt1, racetrack, gate or arrow")
		seed           = fs.Uint64("seed", 0, "Colour seed for reproducible output (0 = random)")
		dryRun         = fs.Bool("dry-run", false, "Print a summary and the document to stdout instead of writing it")
		outputUser     = fs.String("output-user", "", "Basic auth username for an HTTP output")
		outputPassword = fs.String("output-password", "", "Basic auth password for an HTTP output")
	)

	fs.Usage = func() {
		name := fs.Name()
		fmt.Fprintf(stderr, "Usage: %s [options]\n\n", name)
		fmt.Fprintf(stderr, "Track to GeoJSON Converter\n\n")
		fmt.Fprintf(stderr, "Reads timestamped position samples, splits the track at turning points and\n")
		fmt.Fprintf(stderr, "writes a GeoJSON FeatureCollection with one coloured line per segment plus\n")
		fmt.Fprintf(stderr, "start, turning point and finish markers.\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(stderr, "  TRACK2GEOJSON_CONFIG          - YAML configuration file\n")
		fmt.Fprintf(stderr, "  TRACK2GEOJSON_INPUT           - Input path or URL\n")
		fmt.Fprintf(stderr, "  TRACK2GEOJSON_OUTPUT          - Output path or URL\n")
		fmt.Fprintf(stderr, "  TRACK2GEOJSON_THRESHOLD       - Turning point threshold (default: 30)\n")
		fmt.Fprintf(stderr, "  TRACK2GEOJSON_TITLE           - Collection title\n")
		fmt.Fprintf(stderr, "  TRACK2GEOJSON_VOL             - Collection vol (default: 20)\n")
		fmt.Fprintf(stderr, "  TRACK2GEOJSON_DUPLICATES      - skip or fail (default: skip)\n")
		fmt.Fprintf(stderr, "  TRACK2GEOJSON_FINISH_SYMBOL   - Finish marker symbol (default: entrance-alt1)\n")
		fmt.Fprintf(stderr, "  TRACK2GEOJSON_SEED            - Colour seed\n")
		fmt.Fprintf(stderr, "  TRACK2GEOJSON_DRY_RUN         - true to print instead of writing\n")
		fmt.Fprintf(stderr, "  TRACK2GEOJSON_OUTPUT_USER     - HTTP output username\n")
		fmt.Fprintf(stderr, "  TRACK2GEOJSON_OUTPUT_PASSWORD - HTTP output password\n")
		fmt.Fprintf(stderr, "  LOG_LEVEL, LOG_FILE, OTEL_*, PYROSCOPE_* - logging, telemetry and profiling\n")
		fmt.Fprintf(stderr, "\nPrecedence: defaults < config file < environment < flags\n")
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  # Dry run (safe for testing)\n")
		fmt.Fprintf(stderr, "  %s --dry-run --input=data/12905278.json\n\n", name)
		fmt.Fprintf(stderr, "  # Write a file with reproducible colours\n")
		fmt.Fprintf(stderr, "  %s --input=data/12905278.json --output=out/12905278.geojson --seed=7\n\n", name)
		fmt.Fprintf(stderr, "  # Fetch from and upload to HTTP endpoints\n")
		fmt.Fprintf(stderr, "  %s --input=https://tracker.example.com/export/12905278.json \\\n", name)
		fmt.Fprintf(stderr, "    --output=https://maps.example.com/tracks/12905278.geojson \\\n")
		fmt.Fprintf(stderr, "    --output-user=maps --output-password=your_token\n\n")
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return config.Config{}, err
		}
		return config.Config{}, &usageError{err: err}
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "Error: unexpected arguments %v\n\n", fs.Args())
		fs.Usage()
		return config.Config{}, &usageError{err: fmt.Errorf("unexpected arguments %v", fs.Args())}
	}

	cfg := defaults
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}
	if err := config.ApplyEnv(&cfg); err != nil {
		return config.Config{}, err
	}

	// Only flags given on the command line override the file and environment
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "input":
			cfg.Input = *input
		case "output":
			cfg.Output = *output
		case "threshold":
			cfg.ThresholdDegrees = *threshold
		case "title":
			cfg.Title = *title
		case "vol":
			cfg.Vol = *vol
		case "duplicates":
			cfg.DuplicatePolicy = *duplicates
		case "finish-symbol":
			cfg.FinishSymbol = *finishSymbol
		case "seed":
			cfg.ColorSeed = *seed
		case "dry-run":
			cfg.DryRun = *dryRun
		case "output-user":
			cfg.OutputUser = *outputUser
		case "output-password":
			cfg.OutputPassword = *outputPassword
		}
	})

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// getEnv returns the value of an environment variable or a default value if not set
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
