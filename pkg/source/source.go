package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"track2geojson/pkg/types"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Reader fetches the raw input document.
type Reader interface {
	Read(ctx context.Context) ([]byte, error)
	Location() string
}

// Open returns an HTTP reader for http(s) URLs and a file reader otherwise.
func Open(location string) Reader {
	if isURL(location) {
		return NewHTTPReader(location)
	}
	return NewFileReader(location)
}

func isURL(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

type FileReader struct {
	path string
}

func NewFileReader(path string) *FileReader {
	return &FileReader{path: path}
}

func (r *FileReader) Location() string {
	return r.path
}

func (r *FileReader) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w: %w", r.path, types.ErrIO, err)
	}
	return data, nil
}

type HTTPReader struct {
	httpClient *http.Client
	url        string
	tracer     trace.Tracer
}

func NewHTTPReader(url string) *HTTPReader {
	// Create HTTP client with OpenTelemetry instrumentation
	client := &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		Timeout:   30 * time.Second,
	}

	return &HTTPReader{
		httpClient: client,
		url:        url,
		tracer:     otel.Tracer("source-http"),
	}
}

func (r *HTTPReader) Location() string {
	return r.url
}

func (r *HTTPReader) Read(ctx context.Context) ([]byte, error) {
	ctx, span := r.tracer.Start(ctx, "source.fetch",
		trace.WithAttributes(
			attribute.String("http.url", r.url),
			attribute.String("http.method", http.MethodGet),
		),
	)
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to create request: %w: %w", types.ErrIO, err)
	}

	req.Header.Set("User-Agent", "track2geojson/1.0.0")
	req.Header.Set("Accept", "application/json, application/xml;q=0.9, */*;q=0.1")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to make request: %w: %w", types.ErrIO, err)
	}
	defer resp.Body.Close()

	span.SetAttributes(
		attribute.Int("http.status_code", resp.StatusCode),
		attribute.String("http.response.content_type", resp.Header.Get("Content-Type")),
	)

	if resp.StatusCode != http.StatusOK {
		// Read the error response body for debugging
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		err := fmt.Errorf("%w: source returned status %d: %s", types.ErrIO, resp.StatusCode, strings.TrimSpace(string(body)))
		span.RecordError(err)
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to read response body: %w: %w", types.ErrIO, err)
	}

	span.SetAttributes(attribute.Int("response.size_bytes", len(body)))
	return body, nil
}
