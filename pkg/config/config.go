// Package config holds the conversion settings and layers them from defaults, a YAML file and
// TRACK2GEOJSON_* environment variables. Command-line flags are applied last by main.
package config

import (
	"errors"
	"fmt"
	"os"
	"path"
	"strconv"
	"strings"

	"track2geojson/pkg/detector"
	"track2geojson/pkg/feature"
	"track2geojson/pkg/types"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "TRACK2GEOJSON_"

// DefaultVol is the collection "vol" property when none is configured.
const DefaultVol = 20

type Config struct {
	Input            string  `yaml:"input" validate:"required"`
	Output           string  `yaml:"output" validate:"required_unless=DryRun true"`
	ThresholdDegrees float64 `yaml:"threshold_degrees" validate:"gte=0,lte=180"`
	Title            string  `yaml:"title"`
	Vol              float64 `yaml:"vol" validate:"gte=0"`
	DuplicatePolicy  string  `yaml:"duplicate_policy" validate:"oneof=skip fail"`
	FinishSymbol     string  `yaml:"finish_symbol" validate:"finish_symbol"`
	// ColorSeed 0 means unseeded random colours.
	ColorSeed      uint64 `yaml:"color_seed"`
	DryRun         bool   `yaml:"dry_run"`
	OutputUser     string `yaml:"output_user"`
	OutputPassword string `yaml:"output_password"`
}

func Default() Config {
	return Config{
		ThresholdDegrees: detector.DefaultThreshold,
		Vol:              DefaultVol,
		DuplicatePolicy:  string(detector.PolicySkip),
		FinishSymbol:     feature.SymbolEntrance,
	}
}

// Load reads a YAML file over the defaults. Keys missing from the file keep their default.
func Load(filename string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file %s: %w: %w", filename, types.ErrIO, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w: %w", filename, types.ErrValidation, err)
	}
	return cfg, nil
}

// ApplyEnv overrides cfg with any TRACK2GEOJSON_* variables that are set and non-empty.
func ApplyEnv(cfg *Config) error {
	setString := func(key string, dst *string) {
		if v := os.Getenv(EnvPrefix + key); v != "" {
			*dst = v
		}
	}
	var errs []error
	setFloat := func(key string, dst *float64) {
		if v := os.Getenv(EnvPrefix + key); v != "" {
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s=%q is not a number: %w", EnvPrefix, key, v, types.ErrValidation))
				return
			}
			*dst = f
		}
	}

	setString("INPUT", &cfg.Input)
	setString("OUTPUT", &cfg.Output)
	setFloat("THRESHOLD", &cfg.ThresholdDegrees)
	setString("TITLE", &cfg.Title)
	setFloat("VOL", &cfg.Vol)
	setString("DUPLICATES", &cfg.DuplicatePolicy)
	setString("FINISH_SYMBOL", &cfg.FinishSymbol)
	setString("OUTPUT_USER", &cfg.OutputUser)
	setString("OUTPUT_PASSWORD", &cfg.OutputPassword)

	if v := os.Getenv(EnvPrefix + "SEED"); v != "" {
		seed, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sSEED=%q is not an unsigned integer: %w", EnvPrefix, v, types.ErrValidation))
		} else {
			cfg.ColorSeed = seed
		}
	}
	if v := os.Getenv(EnvPrefix + "DRY_RUN"); v != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Errorf("%sDRY_RUN=%q is not a boolean: %w", EnvPrefix, v, types.ErrValidation))
		} else {
			cfg.DryRun = b
		}
	}

	return errors.Join(errs...)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// RegisterValidation only fails on an empty tag or a nil func.
	_ = v.RegisterValidation("finish_symbol", func(fl validator.FieldLevel) bool {
		return feature.IsFinishSymbol(fl.Field().String())
	})
	return v
}

// Validate checks the final, fully layered configuration. Failures wrap types.ErrValidation.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, describe(fe))
			}
			return fmt.Errorf("invalid configuration: %s: %w", strings.Join(msgs, "; "), types.ErrValidation)
		}
		return fmt.Errorf("invalid configuration: %w: %w", types.ErrValidation, err)
	}
	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "required_unless":
		return fmt.Sprintf("%s is required unless dry run is enabled", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %v", fe.Field(), fe.Param(), fe.Value())
	case "finish_symbol":
		return fmt.Sprintf("%s must be one of [%s], got %v", fe.Field(), strings.Join(feature.FinishSymbols, " "), fe.Value())
	case "gte", "lte":
		return fmt.Sprintf("%s must be %s %s, got %v", fe.Field(), fe.Tag(), fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
	}
}

// ResolvedTitle returns Title, or the input's base name without extension when Title is empty.
func (c Config) ResolvedTitle() string {
	if c.Title != "" {
		return c.Title
	}
	loc := c.Input
	if i := strings.IndexAny(loc, "?#"); i >= 0 {
		loc = loc[:i]
	}
	// path.Base also handles URLs; OS-specific separators are normalised first.
	base := path.Base(strings.ReplaceAll(loc, "\\", "/"))
	if base == "." || base == "/" {
		return ""
	}
	return strings.TrimSuffix(base, path.Ext(base))
}
