package otel_test

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	adapter "github.com/neomorfeo/randomnum/internal/adapter/otel"
)

func setupTestMeter(t *testing.T) *sdkmetric.ManualReader {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(mp)
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	return reader
}

type fixedEntropy struct {
	err error
}

func (e *fixedEntropy) Draw(_ context.Context) ([]byte, error) {
	if e.err != nil {
		return nil, e.err
	}
	return []byte{1, 2, 3, 4}, nil
}

// drawCounts sums the draw counter by outcome.
func drawCounts(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collecting metrics: %v", err)
	}

	counts := make(map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "randomnum.entropy.draws" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("draw counter data = %T, want Sum[int64]", m.Data)
			}
			for _, dp := range sum.DataPoints {
				outcome, _ := dp.Attributes.Value(attribute.Key("outcome"))
				counts[outcome.AsString()] += dp.Value
			}
		}
	}
	return counts
}

func TestTracingEntropy_Draw_RecordsSpanAndCount(t *testing.T) {
	exporter := setupTestTracer(t)
	reader := setupTestMeter(t)

	src, err := adapter.NewTracingEntropy(&fixedEntropy{})
	if err != nil {
		t.Fatalf("NewTracingEntropy failed: %v", err)
	}

	buf, err := src.Draw(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(buf) != 4 {
		t.Errorf("len = %d, want 4", len(buf))
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if spans[0].Name != "EntropySource.Draw" {
		t.Errorf("span name = %q, want %q", spans[0].Name, "EntropySource.Draw")
	}
	assertAttribute(t, spans[0], "entropy.bytes", "4")

	if got := drawCounts(t, reader)["ok"]; got != 1 {
		t.Errorf("ok draws = %d, want 1", got)
	}
}

func TestTracingEntropy_Draw_CountsErrors(t *testing.T) {
	setupTestTracer(t)
	reader := setupTestMeter(t)
	fault := errors.New("no entropy")

	src, err := adapter.NewTracingEntropy(&fixedEntropy{err: fault})
	if err != nil {
		t.Fatalf("NewTracingEntropy failed: %v", err)
	}

	if _, err := src.Draw(context.Background()); !errors.Is(err, fault) {
		t.Fatalf("expected fault, got %v", err)
	}

	counts := drawCounts(t, reader)
	if counts["error"] != 1 || counts["ok"] != 0 {
		t.Errorf("counts = %v, want one error", counts)
	}
}
