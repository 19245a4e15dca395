package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/neomorfeo/randomnum/internal/domain"
)

// TracingPublisher wraps a domain.AuditPublisher with OpenTelemetry tracing.
type TracingPublisher struct {
	next   domain.AuditPublisher
	tracer trace.Tracer
}

var _ domain.AuditPublisher = (*TracingPublisher)(nil)

// NewTracingPublisher creates a tracing decorator around the given publisher.
func NewTracingPublisher(next domain.AuditPublisher) *TracingPublisher {
	return &TracingPublisher{
		next:   next,
		tracer: otel.Tracer(tracerName),
	}
}

func (p *TracingPublisher) Publish(ctx context.Context, event domain.AuditEvent) error {
	ctx, span := p.tracer.Start(ctx, "AuditPublisher.Publish",
		trace.WithAttributes(
			attribute.String("audit.kind", string(event.Kind)),
			attribute.String("audit.caller", event.Caller.String()),
		),
	)
	defer span.End()

	err := p.next.Publish(ctx, event)
	if err != nil {
		recordError(span, err)
	}
	return err
}
