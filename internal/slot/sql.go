package slot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const schema = `
	CREATE TABLE IF NOT EXISTS cart_slots (
		slot_key   TEXT PRIMARY KEY,
		payload    TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// SQLSlot keeps snapshots in the cart_slots table of a SQL database
type SQLSlot struct {
	db *sqlx.DB
}

// NewSQLite opens (or creates) a SQLite database file as a local slot
func NewSQLite(path string) (*SQLSlot, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// One connection keeps ":memory:" databases alive and serialises writers.
	db.SetMaxOpenConns(1)

	return newSQLSlot(db)
}

// NewPostgres connects to Postgres and uses it as the slot
func NewPostgres(databaseURL string) (*SQLSlot, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return newSQLSlot(db)
}

func newSQLSlot(db *sqlx.DB) (*SQLSlot, error) {
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create cart_slots table: %w", err)
	}

	return &SQLSlot{db: db}, nil
}

// Get returns the payload stored under key
func (s *SQLSlot) Get(ctx context.Context, key string) ([]byte, error) {
	var payload string
	err := s.db.GetContext(ctx, &payload,
		s.db.Rebind("SELECT payload FROM cart_slots WHERE slot_key = ?"), key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(payload), nil
}

// Set upserts the payload stored under key
func (s *SQLSlot) Set(ctx context.Context, key string, value []byte) error {
	query := `
		INSERT INTO cart_slots (slot_key, payload, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (slot_key) DO UPDATE
		SET payload = excluded.payload, updated_at = excluded.updated_at`

	_, err := s.db.ExecContext(ctx, s.db.Rebind(query), key, string(value))
	return err
}

// Delete removes the payload stored under key
func (s *SQLSlot) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx,
		s.db.Rebind("DELETE FROM cart_slots WHERE slot_key = ?"), key)
	return err
}

// Close closes the database connection
func (s *SQLSlot) Close() error {
	return s.db.Close()
}
