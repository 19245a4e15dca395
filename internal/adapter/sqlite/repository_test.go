package sqlite_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/neomorfeo/randomnum/internal/adapter/sqlite"
	"github.com/neomorfeo/randomnum/internal/domain"
)

// newTestStore creates an in-memory SQLite store for testing.
func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func mustParse(t *testing.T, s string) domain.Number {
	t.Helper()
	n, err := domain.ParseNumber(s)
	if err != nil {
		t.Fatalf("ParseNumber(%q): %v", s, err)
	}
	return n
}

func TestOwner_DefaultsToAnonymous(t *testing.T) {
	store := newTestStore(t)

	got, err := store.Owner(context.Background())
	if err != nil {
		t.Fatalf("Owner failed: %v", err)
	}
	if got != domain.Anonymous {
		t.Errorf("owner = %s, want %s", got, domain.Anonymous)
	}
}

func TestSetOwner(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, id := range []domain.Identity{"\x0a\x01", "\x0b"} {
		if err := store.SetOwner(ctx, id); err != nil {
			t.Fatalf("SetOwner failed: %v", err)
		}
		got, err := store.Owner(ctx)
		if err != nil {
			t.Fatalf("Owner failed: %v", err)
		}
		if got != id {
			t.Errorf("owner = %s, want %s", got, id)
		}
	}
}

func TestOperators(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	id := domain.Identity("\x0b")

	ok, err := store.IsOperator(ctx, id)
	if err != nil {
		t.Fatalf("IsOperator failed: %v", err)
	}
	if ok {
		t.Error("IsOperator = true before AddOperator")
	}

	// Re-adding is a no-op.
	for range 2 {
		if err := store.AddOperator(ctx, id); err != nil {
			t.Fatalf("AddOperator failed: %v", err)
		}
	}

	ok, _ = store.IsOperator(ctx, id)
	if !ok {
		t.Error("IsOperator = false after AddOperator")
	}
	if ok, _ := store.IsOperator(ctx, domain.Identity("\x0b\x00")); ok {
		t.Error("identities must match byte for byte")
	}
}

func TestLookup_Missing(t *testing.T) {
	store := newTestStore(t)

	_, ok, err := store.Lookup(context.Background(), domain.NewNumber(1))
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if ok {
		t.Error("ok = true for missing key")
	}
}

func TestStore_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	cases := []struct{ seq, value string }{
		{"0", "0"},
		{"1", "18446744073709551616"},
		{"340282366920938463463374607431768211455", "7"},
		{
			"115792089237316195423570985008687907853269984665640564039457584007913129639935",
			"115792089237316195423570985008687907853269984665640564039457584007913129639935",
		},
	}

	for _, tc := range cases {
		seq, value := mustParse(t, tc.seq), mustParse(t, tc.value)
		if err := store.Store(ctx, seq, value); err != nil {
			t.Fatalf("Store(%s) failed: %v", seq, err)
		}
		got, ok, err := store.Lookup(ctx, seq)
		if err != nil || !ok {
			t.Fatalf("Lookup(%s) = %v, %v", seq, ok, err)
		}
		if !got.Equal(value) {
			t.Errorf("Lookup(%s) = %s, want %s", seq, got, value)
		}
	}
}

func TestStore_Overwrites(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seq := domain.NewNumber(5)

	if err := store.Store(ctx, seq, domain.NewNumber(1)); err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	if err := store.Store(ctx, seq, domain.NewNumber(2)); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	got, _, _ := store.Lookup(ctx, seq)
	if !got.Equal(domain.NewNumber(2)) {
		t.Errorf("value = %s, want 2", got)
	}
}

func TestLookup_RejectsOversizedValue(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seq := domain.NewNumber(3)

	_, err := store.DB().ExecContext(ctx,
		`INSERT INTO randoms (seq, value) VALUES (?, ?)`,
		seq.EncodeLE(), bytes.Repeat([]byte{0x01}, domain.MaxEncodedLen+1),
	)
	if err != nil {
		t.Fatalf("seeding oversized row: %v", err)
	}

	_, _, err = store.Lookup(ctx, seq)
	if !errors.Is(err, domain.ErrEncodingBound) {
		t.Errorf("expected ErrEncodingBound, got %v", err)
	}
}

func TestStore_SurvivesReopen(t *testing.T) {
	path := t.TempDir() + "/state.db"
	ctx := context.Background()
	owner := domain.Identity("\x0a")
	operator := domain.Identity("\x0b")
	seq, value := domain.NewNumber(1), domain.NewNumber(42)

	first, err := sqlite.New(path)
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	if err := first.SetOwner(ctx, owner); err != nil {
		t.Fatalf("SetOwner: %v", err)
	}
	if err := first.AddOperator(ctx, operator); err != nil {
		t.Fatalf("AddOperator: %v", err)
	}
	if err := first.Store(ctx, seq, value); err != nil {
		t.Fatalf("Store: %v", err)
	}
	first.Close()

	second, err := sqlite.New(path)
	if err != nil {
		t.Fatalf("reopening store: %v", err)
	}
	t.Cleanup(func() { second.Close() })

	if got, _ := second.Owner(ctx); got != owner {
		t.Errorf("owner = %s, want %s", got, owner)
	}
	if ok, _ := second.IsOperator(ctx, operator); !ok {
		t.Error("operator lost across reopen")
	}
	got, ok, err := second.Lookup(ctx, seq)
	if err != nil || !ok || !got.Equal(value) {
		t.Errorf("Lookup = %s, %v, %v; want %s", got, ok, err, value)
	}
}
