package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/neomorfeo/randomnum/internal/domain"
)

// State bundles the three persisted regions the service operates on.
type State struct {
	Owner     domain.OwnerRegister
	Operators domain.OperatorRegistry
	Ledger    domain.RandomLedger
}

// NewState builds a State whose regions all live in one backend.
func NewState(store domain.StateStore) State {
	return State{
		Owner:     store,
		Operators: store,
		Ledger:    store,
	}
}

// mintedCacheSize bounds how many stored sequence numbers the service
// remembers without consulting the ledger.
const mintedCacheSize = 4096

// RandomService mints random numbers for operators and caches them by
// sequence number.
type RandomService struct {
	state     State
	entropy   domain.EntropySource
	publisher domain.AuditPublisher
	validator domain.TransitionValidator

	flights singleflight.Group

	// mu guards inFlight and serialises lifecycle transitions.
	mu       sync.Mutex
	inFlight map[string]domain.Status
	minted   *lru.Cache[string, struct{}]
}

// NewRandomService creates a service with the given adapters.
func NewRandomService(state State, entropy domain.EntropySource, publisher domain.AuditPublisher, validator domain.TransitionValidator) *RandomService {
	minted, err := lru.New[string, struct{}](mintedCacheSize)
	if err != nil {
		panic(err) // only for a non-positive size
	}
	return &RandomService{
		state:     state,
		entropy:   entropy,
		publisher: publisher,
		validator: validator,
		inFlight:  make(map[string]domain.Status),
		minted:    minted,
	}
}

// Initialize overwrites the owner. It performs no authorization check.
func (s *RandomService) Initialize(ctx context.Context, owner domain.Identity) error {
	if err := s.state.Owner.SetOwner(ctx, owner); err != nil {
		return fmt.Errorf("setting owner: %w", err)
	}

	s.publish(ctx, domain.AuditEvent{
		Kind:    domain.AuditOwnerInitialized,
		Caller:  domain.Anonymous,
		Subject: owner,
	})
	return nil
}

// Owner returns the current owner.
func (s *RandomService) Owner(ctx context.Context) (domain.Identity, error) {
	return s.state.Owner.Owner(ctx)
}

// AddOperator grants id the operator role. Only the owner may call it, and
// nobody may while the owner is still the anonymous identity.
func (s *RandomService) AddOperator(ctx context.Context, caller, id domain.Identity) (bool, error) {
	owner, err := s.state.Owner.Owner(ctx)
	if err != nil {
		return false, fmt.Errorf("reading owner: %w", err)
	}
	if owner.IsAnonymous() || caller != owner {
		return false, &domain.AuthorizationError{Caller: caller, Role: domain.RoleOwner}
	}

	if err := s.state.Operators.AddOperator(ctx, id); err != nil {
		return false, fmt.Errorf("adding operator: %w", err)
	}

	s.publish(ctx, domain.AuditEvent{
		Kind:    domain.AuditOperatorAdded,
		Caller:  caller,
		Subject: id,
	})
	return true, nil
}

// Random returns the cached value for seq. A missing value is reported with
// ok == false.
func (s *RandomService) Random(ctx context.Context, seq domain.SequenceNumber) (domain.RandomValue, bool, error) {
	return s.state.Ledger.Lookup(ctx, seq)
}

// Status reports where seq is in its generation lifecycle.
func (s *RandomService) Status(ctx context.Context, seq domain.SequenceNumber) (domain.Status, error) {
	// The tracked state goes first: a draw that finishes between the two
	// reads is then still seen through the ledger.
	s.mu.Lock()
	status := s.statusLocked(seq.String())
	s.mu.Unlock()
	if status != domain.StatusMissing {
		return status, nil
	}

	_, ok, err := s.state.Ledger.Lookup(ctx, seq)
	if err != nil {
		return "", err
	}
	if ok {
		return domain.StatusStored, nil
	}
	return domain.StatusMissing, nil
}

// Generate returns the value for seq, drawing and storing a new one on the
// first request. Concurrent first requests for the same seq share one draw.
func (s *RandomService) Generate(ctx context.Context, caller domain.Identity, seq domain.SequenceNumber) (domain.Random, error) {
	ok, err := s.state.Operators.IsOperator(ctx, caller)
	if err != nil {
		return domain.Random{}, fmt.Errorf("checking operator: %w", err)
	}
	if !ok {
		return domain.Random{}, &domain.AuthorizationError{Caller: caller, Role: domain.RoleOperator}
	}

	if value, ok, err := s.state.Ledger.Lookup(ctx, seq); err != nil {
		return domain.Random{}, fmt.Errorf("looking up sequence %s: %w", seq, err)
	} else if ok {
		return domain.Random{Seq: seq, Value: value}, nil
	}

	// Waiters must not inherit the cancellation of whichever caller started
	// the flight.
	flightCtx := context.WithoutCancel(ctx)
	v, err, _ := s.flights.Do(seq.String(), func() (any, error) {
		return s.draw(flightCtx, caller, seq)
	})
	if err != nil {
		return domain.Random{}, err
	}
	return v.(domain.Random), nil
}

// draw runs inside a single flight for seq.
func (s *RandomService) draw(ctx context.Context, caller domain.Identity, seq domain.SequenceNumber) (domain.Random, error) {
	// A previous flight may have stored the value after our first lookup.
	if value, ok, err := s.state.Ledger.Lookup(ctx, seq); err != nil {
		return domain.Random{}, fmt.Errorf("looking up sequence %s: %w", seq, err)
	} else if ok {
		return domain.Random{Seq: seq, Value: value}, nil
	}

	key := seq.String()
	if _, err := s.advance(ctx, key, domain.EventDraw); err != nil {
		return domain.Random{}, err
	}

	raw, err := s.entropy.Draw(ctx)
	if err != nil {
		return domain.Random{}, s.abort(ctx, key, &domain.EntropySourceError{Err: err})
	}
	value, err := domain.DecodeLE(raw)
	if err != nil {
		return domain.Random{}, s.abort(ctx, key, &domain.EntropySourceError{Err: err})
	}

	if err := s.state.Ledger.Store(ctx, seq, value); err != nil {
		return domain.Random{}, s.abort(ctx, key, fmt.Errorf("storing sequence %s: %w", seq, err))
	}
	if _, err := s.advance(ctx, key, domain.EventStore); err != nil {
		return domain.Random{}, err
	}

	s.publish(ctx, domain.AuditEvent{
		Kind:   domain.AuditRandomGenerated,
		Caller: caller,
		Seq:    seq,
		Value:  value,
	})
	return domain.Random{Seq: seq, Value: value}, nil
}

// advance fires event for key from its tracked status and records the result.
func (s *RandomService) advance(ctx context.Context, key string, event domain.Event) (domain.Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.validator.Apply(ctx, s.statusLocked(key), event)
	if err != nil {
		return "", err
	}

	switch next {
	case domain.StatusDrawing:
		s.inFlight[key] = next
	case domain.StatusStored:
		delete(s.inFlight, key)
		s.minted.Add(key, struct{}{})
	default:
		delete(s.inFlight, key)
	}
	return next, nil
}

// abort returns key to missing after a failed draw and passes cause through.
func (s *RandomService) abort(ctx context.Context, key string, cause error) error {
	if _, err := s.advance(ctx, key, domain.EventFail); err != nil {
		return errors.Join(cause, err)
	}
	return cause
}

// statusLocked must be called with mu held.
func (s *RandomService) statusLocked(key string) domain.Status {
	if status, ok := s.inFlight[key]; ok {
		return status
	}
	if s.minted.Contains(key) {
		return domain.StatusStored
	}
	return domain.StatusMissing
}

// publish records an audit event. The state change it describes is already
// durable, so a failure is logged rather than returned.
func (s *RandomService) publish(ctx context.Context, event domain.AuditEvent) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		slog.WarnContext(ctx, "publishing audit event",
			"kind", event.Kind,
			"error", err,
		)
	}
}
