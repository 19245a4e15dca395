package otel

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/neomorfeo/randomnum/internal/domain"
)

// TracingEntropy wraps a domain.EntropySource with a span per draw and a
// draw counter labelled by outcome.
type TracingEntropy struct {
	next   domain.EntropySource
	tracer trace.Tracer
	draws  metric.Int64Counter
}

var _ domain.EntropySource = (*TracingEntropy)(nil)

// NewTracingEntropy creates a tracing decorator around the given source.
func NewTracingEntropy(next domain.EntropySource) (*TracingEntropy, error) {
	draws, err := otel.Meter(tracerName).Int64Counter("randomnum.entropy.draws",
		metric.WithDescription("Entropy draws, by outcome"),
		metric.WithUnit("{draw}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating entropy draw counter: %w", err)
	}

	return &TracingEntropy{
		next:   next,
		tracer: otel.Tracer(tracerName),
		draws:  draws,
	}, nil
}

func (e *TracingEntropy) Draw(ctx context.Context) ([]byte, error) {
	ctx, span := e.tracer.Start(ctx, "EntropySource.Draw")
	defer span.End()

	buf, err := e.next.Draw(ctx)
	outcome := "ok"
	if err != nil {
		outcome = "error"
		recordError(span, err)
	} else {
		span.SetAttributes(attribute.Int("entropy.bytes", len(buf)))
	}
	e.draws.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	return buf, err
}
