package domain

import "context"

// OwnerRegister is the persisted single-slot cell holding the owner.
type OwnerRegister interface {
	Owner(ctx context.Context) (Identity, error)
	SetOwner(ctx context.Context, owner Identity) error
}

// OperatorRegistry is the persisted set of identities allowed to mint.
type OperatorRegistry interface {
	AddOperator(ctx context.Context, id Identity) error
	IsOperator(ctx context.Context, id Identity) (bool, error)
}

// RandomLedger is the persisted map from sequence number to random value.
// Lookup reports a missing key with ok == false and a nil error.
type RandomLedger interface {
	Lookup(ctx context.Context, seq SequenceNumber) (value RandomValue, ok bool, err error)
	Store(ctx context.Context, seq SequenceNumber, value RandomValue) error
}

// StateStore is a backend holding all three persisted regions.
type StateStore interface {
	OwnerRegister
	OperatorRegistry
	RandomLedger
}

// EntropySource returns a fixed-size buffer of secure random bytes per call.
type EntropySource interface {
	Draw(ctx context.Context) ([]byte, error)
}

// TransitionValidator checks generation lifecycle transitions.
type TransitionValidator interface {
	Apply(ctx context.Context, current Status, event Event) (Status, error)
}

// AuditPublisher defines the contract for emitting audit events.
type AuditPublisher interface {
	Publish(ctx context.Context, event AuditEvent) error
}
