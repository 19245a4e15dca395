package domain

import (
	"fmt"
	"slices"

	"github.com/holiman/uint256"
)

// MaxEncodedLen bounds the little-endian encoding of a Number.
const MaxEncodedLen = 32

// Number is a non-negative integer of at most MaxEncodedLen bytes.
// The zero value is 0.
type Number struct {
	v uint256.Int
}

// SequenceNumber is the caller-supplied key into the random ledger.
type SequenceNumber = Number

// RandomValue is a value decoded from raw entropy.
type RandomValue = Number

// NewNumber returns the Number holding n.
func NewNumber(n uint64) Number {
	var x Number
	x.v.SetUint64(n)
	return x
}

// ParseNumber parses a base-10 string.
func ParseNumber(s string) (Number, error) {
	if s == "" {
		return Number{}, fmt.Errorf("%w: empty", ErrInvalidNumber)
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return Number{}, fmt.Errorf("%w: %q is not a decimal integer", ErrInvalidNumber, s)
		}
	}
	var x Number
	if err := x.v.SetFromDecimal(s); err != nil {
		return Number{}, fmt.Errorf("%w: %v", ErrInvalidNumber, err)
	}
	return x, nil
}

// DecodeLE interprets b as a little-endian unsigned integer. Encodings longer
// than MaxEncodedLen are rejected with ErrEncodingBound, even when the extra
// bytes are zero.
func DecodeLE(b []byte) (Number, error) {
	if len(b) > MaxEncodedLen {
		return Number{}, fmt.Errorf("%w: got %d bytes", ErrEncodingBound, len(b))
	}
	be := slices.Clone(b)
	slices.Reverse(be)

	var x Number
	x.v.SetBytes(be)
	return x, nil
}

// EncodeLE returns the minimal little-endian encoding. Zero encodes as a
// single zero byte so that every key in the ledger has a non-empty encoding.
func (x Number) EncodeLE() []byte {
	b := x.v.Bytes()
	if len(b) == 0 {
		return []byte{0}
	}
	slices.Reverse(b)
	return b
}

// Equal reports whether x and y hold the same integer.
func (x Number) Equal(y Number) bool {
	return x.v.Eq(&y.v)
}

// IsZero reports whether x is 0.
func (x Number) IsZero() bool {
	return x.v.IsZero()
}

// String renders x in base 10.
func (x Number) String() string {
	return x.v.Dec()
}
