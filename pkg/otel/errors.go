package otel

import (
	"track2geojson/pkg/types"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Error type constants for structured error recording. They match types.ErrorKind.
const (
	ErrorTypeParse            = "parse"
	ErrorTypeDegenerateVector = "degenerate_vector"
	ErrorTypeInsufficientData = "insufficient_data"
	ErrorTypeIO               = "io"
	ErrorTypeValidation       = "validation"
	ErrorTypeInternal         = "internal"
)

// RecordError records an error on a span with structured attributes and sets the span status to Error.
func RecordError(span trace.Span, err error, errorType string, transient bool) {
	span.RecordError(err, trace.WithAttributes(
		attribute.String("error.type", errorType),
		attribute.Bool("error.transient", transient),
	))
	span.SetStatus(codes.Error, err.Error())
}

// RecordKindError records err with the error type derived from its sentinel and returns that type.
// Only IO failures are considered transient.
func RecordKindError(span trace.Span, err error) string {
	kind := types.ErrorKind(err)
	RecordError(span, err, kind, kind == ErrorTypeIO)
	return kind
}

// SetSpanOk sets the span status to Ok, indicating successful completion.
func SetSpanOk(span trace.Span) {
	span.SetStatus(codes.Ok, "")
}
