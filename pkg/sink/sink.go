// Package sink delivers the rendered GeoJSON document to a file or an HTTP endpoint.
package sink

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"track2geojson/pkg/types"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ContentType is sent with HTTP uploads.
const ContentType = "application/geo+json"

type Writer interface {
	Write(ctx context.Context, data []byte) error
	Location() string
}

// Open returns an HTTP writer for http(s) URLs and a file writer otherwise.
// Credentials are only used by the HTTP writer.
func Open(location, username, password string) Writer {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return NewHTTPWriter(location, username, password)
	}
	return NewFileWriter(location)
}

// FileWriter replaces the target file atomically: readers see either the old content or the
// complete new document, never a partial write.
type FileWriter struct {
	path string
}

func NewFileWriter(path string) *FileWriter {
	return &FileWriter{path: path}
}

func (w *FileWriter) Location() string {
	return w.path
}

func (w *FileWriter) Write(ctx context.Context, data []byte) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(w.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(w.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file in %s: %w: %w", dir, types.ErrIO, err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write %s: %w: %w", tmpName, types.ErrIO, err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync %s: %w: %w", tmpName, types.ErrIO, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w: %w", tmpName, types.ErrIO, err)
	}
	if err = os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("failed to chmod %s: %w: %w", tmpName, types.ErrIO, err)
	}
	if err = os.Rename(tmpName, w.path); err != nil {
		return fmt.Errorf("failed to move output into place at %s: %w: %w", w.path, types.ErrIO, err)
	}
	return nil
}

type HTTPWriter struct {
	httpClient *http.Client
	url        string
	username   string
	password   string
	tracer     trace.Tracer
}

func NewHTTPWriter(url, username, password string) *HTTPWriter {
	// Create HTTP client with OpenTelemetry instrumentation
	client := &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		Timeout:   30 * time.Second,
	}

	return &HTTPWriter{
		httpClient: client,
		url:        url,
		username:   username,
		password:   password,
		tracer:     otel.Tracer("sink-http"),
	}
}

func (w *HTTPWriter) Location() string {
	return w.url
}

// Write uploads the document with PUT. Any non-2xx response is an error.
func (w *HTTPWriter) Write(ctx context.Context, data []byte) error {
	ctx, span := w.tracer.Start(ctx, "sink.upload",
		trace.WithAttributes(
			attribute.String("http.url", w.url),
			attribute.String("http.method", http.MethodPut),
			attribute.Int("request.size_bytes", len(data)),
		),
	)
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, w.url, bytes.NewReader(data))
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create request: %w: %w", types.ErrIO, err)
	}

	req.Header.Set("Content-Type", ContentType)
	req.Header.Set("User-Agent", "track2geojson/1.0.0")

	// Add basic authentication if credentials are provided
	if w.username != "" && w.password != "" {
		req.SetBasicAuth(w.username, w.password)
		span.SetAttributes(
			attribute.Bool("auth.enabled", true),
			attribute.String("auth.username", w.username),
		)
	} else {
		span.SetAttributes(attribute.Bool("auth.enabled", false))
	}

	resp, err := w.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to send request: %w: %w", types.ErrIO, err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		err := fmt.Errorf("%w: sink returned status %d: %s", types.ErrIO, resp.StatusCode, strings.TrimSpace(string(body)))
		span.RecordError(err)
		return err
	}

	return nil
}
