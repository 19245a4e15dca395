package entropy

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"

	"github.com/neomorfeo/randomnum/internal/domain"
)

var _ domain.EntropySource = (*Source)(nil)

// DefaultSize is the number of bytes drawn per call.
const DefaultSize = 32

// Source draws fixed-size buffers from a secure random reader.
type Source struct {
	reader io.Reader
	size   int
}

// New returns a Source reading size bytes per draw from the host CSPRNG.
func New(size int) (*Source, error) {
	return NewFromReader(rand.Reader, size)
}

// NewFromReader returns a Source over an arbitrary reader. Sizes outside
// 1..domain.MaxEncodedLen are rejected because the drawn bytes become a
// ledger value.
func NewFromReader(r io.Reader, size int) (*Source, error) {
	if size < 1 || size > domain.MaxEncodedLen {
		return nil, fmt.Errorf("entropy size %d out of range 1..%d", size, domain.MaxEncodedLen)
	}
	return &Source{reader: r, size: size}, nil
}

// Size returns the number of bytes returned by each Draw.
func (s *Source) Size() int {
	return s.size
}

// Draw returns a fresh buffer of Size random bytes.
func (s *Source) Draw(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	buf := make([]byte, s.size)
	if _, err := io.ReadFull(s.reader, buf); err != nil {
		return nil, fmt.Errorf("reading %d random bytes: %w", s.size, err)
	}
	return buf, nil
}
