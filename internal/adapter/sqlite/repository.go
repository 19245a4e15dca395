package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/neomorfeo/randomnum/internal/domain"

	_ "modernc.org/sqlite" // Register SQLite driver.
)

//go:embed migrations/*.sql
var migrations embed.FS

var _ domain.StateStore = (*Store)(nil)

// Store implements the owner register, operator registry and random ledger
// on a single SQLite database.
type Store struct {
	db *sql.DB
}

// New opens a SQLite database, runs migrations, and returns a ready store.
func New(dataSourceName string) (*Store, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// One connection: ":memory:" databases are per-connection, and writes
	// are serialised anyway.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	return NewFromDB(db)
}

// NewFromDB wraps an existing database connection, runs migrations, and returns a ready store.
// Use this when the *sql.DB has been pre-configured (e.g., with otelsql instrumentation).
func NewFromDB(db *sql.DB) (*Store, error) {
	if err := runMigrations(db); err != nil {
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying database connection for use by other adapters (e.g., river).
func (s *Store) DB() *sql.DB {
	return s.db
}

func runMigrations(db *sql.DB) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	return nil
}

func (s *Store) Owner(ctx context.Context) (domain.Identity, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx, `SELECT identity FROM owner WHERE id = 1`).Scan(&raw)
	if err != nil {
		return "", fmt.Errorf("reading owner: %w", err)
	}

	id, err := domain.NewIdentity(raw)
	if err != nil {
		return "", fmt.Errorf("decoding owner: %w", err)
	}
	return id, nil
}

func (s *Store) SetOwner(ctx context.Context, owner domain.Identity) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO owner (id, identity) VALUES (1, ?)
		 ON CONFLICT (id) DO UPDATE SET identity = excluded.identity`,
		owner.Bytes(),
	)
	if err != nil {
		return fmt.Errorf("writing owner: %w", err)
	}
	return nil
}

func (s *Store) AddOperator(ctx context.Context, id domain.Identity) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO operators (identity) VALUES (?) ON CONFLICT DO NOTHING`,
		id.Bytes(),
	)
	if err != nil {
		return fmt.Errorf("inserting operator: %w", err)
	}
	return nil
}

func (s *Store) IsOperator(ctx context.Context, id domain.Identity) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM operators WHERE identity = ?`, id.Bytes(),
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking operator: %w", err)
	}
	return true, nil
}

func (s *Store) Lookup(ctx context.Context, seq domain.SequenceNumber) (domain.RandomValue, bool, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM randoms WHERE seq = ?`, seq.EncodeLE(),
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.RandomValue{}, false, nil
	}
	if err != nil {
		return domain.RandomValue{}, false, fmt.Errorf("reading random %s: %w", seq, err)
	}

	value, err := domain.DecodeLE(raw)
	if err != nil {
		return domain.RandomValue{}, false, fmt.Errorf("decoding random %s: %w", seq, err)
	}
	return value, true, nil
}

// Store writes value under seq, replacing any existing value.
func (s *Store) Store(ctx context.Context, seq domain.SequenceNumber, value domain.RandomValue) error {
	key, val := seq.EncodeLE(), value.EncodeLE()
	if len(key) > domain.MaxEncodedLen || len(val) > domain.MaxEncodedLen {
		return domain.ErrEncodingBound
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO randoms (seq, value) VALUES (?, ?)
		 ON CONFLICT (seq) DO UPDATE SET value = excluded.value`,
		key, val,
	)
	if err != nil {
		return fmt.Errorf("writing random %s: %w", seq, err)
	}
	return nil
}
