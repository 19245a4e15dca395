package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for simple conditions without extra context.
var (
	ErrInvalidIdentity = errors.New("invalid identity")
	ErrInvalidNumber   = errors.New("invalid number")
	ErrEncodingBound   = errors.New("encoding exceeds 32 bytes")
)

// Role is a privilege an operation requires of its caller.
type Role string

const (
	RoleOwner    Role = "owner"
	RoleOperator Role = "operator"
)

// AuthorizationError is returned when the caller lacks the role an operation
// requires.
type AuthorizationError struct {
	Caller Identity
	Role   Role
}

func (e *AuthorizationError) Error() string {
	article := "the"
	if e.Role == RoleOperator {
		article = "a valid"
	}
	return fmt.Sprintf("%s is not %s %s", e.Caller, article, e.Role)
}

// EntropySourceError is returned when the entropy source fails to deliver.
type EntropySourceError struct {
	Err error
}

func (e *EntropySourceError) Error() string {
	return fmt.Sprintf("entropy source: %v", e.Err)
}

func (e *EntropySourceError) Unwrap() error {
	return e.Err
}

// TransitionError is returned when a lifecycle transition is not allowed.
type TransitionError struct {
	Event   Event
	Current Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("event %q is not valid from state %q", e.Event, e.Current)
}
