package metrics

import (
	"context"
	"testing"
)

func TestInstrumentsUsableWithoutInit(t *testing.T) {
	if IsEnabled() {
		t.Fatal("metrics should be disabled until InitMetrics installs an exporter")
	}

	// No-op instruments accept recordings without an exporter.
	ctx := context.Background()
	ConversionRunsTotal.Add(ctx, 1)
	ConversionDuration.Record(ctx, 0.5)
	ConversionStageDuration.Record(ctx, 0.1)
	ConversionErrorsTotal.Add(ctx, 1)
	SamplesDecoded.Add(ctx, 5)
	TrackTurningPoints.Record(ctx, 1)
	TrackSegments.Record(ctx, 2)
	TrackLength.Record(ctx, 22000)
	InputPayloadSize.Record(ctx, 1024)
	OutputPayloadSize.Record(ctx, 2048)
}

func TestInitMetrics_Disabled(t *testing.T) {
	t.Setenv("OTEL_METRICS_ENABLED", "false")

	shutdown, err := InitMetrics()
	if err != nil {
		t.Fatalf("InitMetrics failed: %v", err)
	}
	if shutdown == nil {
		t.Fatal("expected a shutdown function")
	}
	shutdown()

	if IsEnabled() {
		t.Error("metrics should stay disabled")
	}
}

func TestRecordLastSuccessTimestamp(t *testing.T) {
	RecordLastSuccessTimestamp()
	if lastSuccessTimestamp.Load() == 0 {
		t.Error("timestamp not recorded")
	}
}
