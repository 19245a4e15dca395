package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/neomorfeo/randomnum/internal/domain"
)

const tracerName = "github.com/neomorfeo/randomnum/internal/adapter/otel"

// TracingStore wraps a domain.StateStore with OpenTelemetry tracing.
// Each method creates a span with semantic attributes and records errors.
type TracingStore struct {
	next   domain.StateStore
	tracer trace.Tracer
}

var _ domain.StateStore = (*TracingStore)(nil)

// NewTracingStore creates a tracing decorator around the given store.
func NewTracingStore(next domain.StateStore) *TracingStore {
	return &TracingStore{
		next:   next,
		tracer: otel.Tracer(tracerName),
	}
}

func (s *TracingStore) Owner(ctx context.Context) (domain.Identity, error) {
	ctx, span := s.tracer.Start(ctx, "OwnerRegister.Owner")
	defer span.End()

	owner, err := s.next.Owner(ctx)
	if err != nil {
		recordError(span, err)
	} else {
		span.SetAttributes(attribute.String("owner", owner.String()))
	}
	return owner, err
}

func (s *TracingStore) SetOwner(ctx context.Context, owner domain.Identity) error {
	ctx, span := s.tracer.Start(ctx, "OwnerRegister.SetOwner",
		trace.WithAttributes(attribute.String("owner", owner.String())),
	)
	defer span.End()

	err := s.next.SetOwner(ctx, owner)
	if err != nil {
		recordError(span, err)
	}
	return err
}

func (s *TracingStore) AddOperator(ctx context.Context, id domain.Identity) error {
	ctx, span := s.tracer.Start(ctx, "OperatorRegistry.AddOperator",
		trace.WithAttributes(attribute.String("operator", id.String())),
	)
	defer span.End()

	err := s.next.AddOperator(ctx, id)
	if err != nil {
		recordError(span, err)
	}
	return err
}

func (s *TracingStore) IsOperator(ctx context.Context, id domain.Identity) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "OperatorRegistry.IsOperator",
		trace.WithAttributes(attribute.String("operator", id.String())),
	)
	defer span.End()

	ok, err := s.next.IsOperator(ctx, id)
	if err != nil {
		recordError(span, err)
	} else {
		span.SetAttributes(attribute.Bool("result.operator", ok))
	}
	return ok, err
}

func (s *TracingStore) Lookup(ctx context.Context, seq domain.SequenceNumber) (domain.RandomValue, bool, error) {
	ctx, span := s.tracer.Start(ctx, "RandomLedger.Lookup",
		trace.WithAttributes(attribute.String("random.seq", seq.String())),
	)
	defer span.End()

	value, ok, err := s.next.Lookup(ctx, seq)
	if err != nil {
		recordError(span, err)
	} else {
		span.SetAttributes(attribute.Bool("result.hit", ok))
	}
	return value, ok, err
}

func (s *TracingStore) Store(ctx context.Context, seq domain.SequenceNumber, value domain.RandomValue) error {
	ctx, span := s.tracer.Start(ctx, "RandomLedger.Store",
		trace.WithAttributes(attribute.String("random.seq", seq.String())),
	)
	defer span.End()

	err := s.next.Store(ctx, seq, value)
	if err != nil {
		recordError(span, err)
	}
	return err
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
