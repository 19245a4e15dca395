package domain

import (
	"encoding/hex"
	"fmt"
)

// MaxIdentityLen is the upper bound on the raw byte length of an Identity.
const MaxIdentityLen = 29

// Identity is an opaque caller principal. Two identities are equal when their
// bytes are equal, so the type is backed by a string to stay comparable and
// usable as a map key.
type Identity string

// Anonymous is the identity of an unauthenticated caller. The owner register
// holds it until the first Initialize.
const Anonymous Identity = "\x04"

// NewIdentity validates raw bytes as an Identity.
func NewIdentity(b []byte) (Identity, error) {
	if len(b) > MaxIdentityLen {
		return "", fmt.Errorf("%w: %d bytes exceeds %d", ErrInvalidIdentity, len(b), MaxIdentityLen)
	}
	return Identity(b), nil
}

// ParseIdentity decodes the lowercase hex form produced by Identity.String.
func ParseIdentity(s string) (Identity, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidIdentity, err)
	}
	return NewIdentity(b)
}

// Bytes returns a copy of the raw identity bytes.
func (id Identity) Bytes() []byte {
	return []byte(id)
}

// String renders the identity as lowercase hex.
func (id Identity) String() string {
	return hex.EncodeToString([]byte(id))
}

// IsAnonymous reports whether id is the anonymous sentinel.
func (id Identity) IsAnonymous() bool {
	return id == Anonymous
}
