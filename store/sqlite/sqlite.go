/*
Package sqlite provides SQLite-backed storage for statement sessions.

PURPOSE:
  The engine is a pure function; the rows a clerk enters between requests
  have to live somewhere. This store holds statement sessions (client
  details plus the rate card) and their entered transaction rows in the
  order they were typed.

KEY TABLES:
  sessions: One per client statement being assembled
  entries:  Entered transaction rows, insertion-ordered via position

PERSISTENCE SCOPE:
  Sessions are working state, not records: the default database is
  ":memory:", so nothing survives a restart. Point the server at a file
  path to keep sessions across restarts during development.

NUMERIC COLUMNS:
  Monetary values and rates are stored as decimal TEXT, never as floats,
  so amounts round-trip exactly into the engine's decimal arithmetic.

WAL MODE:
  SQLite is opened with WAL and foreign keys on; entry rows cascade away
  with their session.

USAGE:
  store, err := sqlite.New(":memory:")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store persists statement sessions and their entered rows.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		client_name TEXT NOT NULL,
		account_number TEXT NOT NULL,
		rate_card_json TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS entries (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		entry_date TEXT NOT NULL,
		kind TEXT NOT NULL,
		amount TEXT NOT NULL,
		position INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_entries_session
		ON entries(session_id, position);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// RECORD TYPES
// =============================================================================

// Session is one client statement being assembled.
type Session struct {
	ID            string
	ClientName    string
	AccountNumber string
	// RateCardJSON is the session's configuration in the factory's JSON
	// schema (base rate, tiers, tenor).
	RateCardJSON string
	CreatedAt    time.Time
}

// Entry is a single entered transaction row. Amount is a decimal string.
type Entry struct {
	ID        string
	SessionID string
	Date      time.Time
	Kind      string
	Amount    string
	Position  int
}

// =============================================================================
// SESSION OPERATIONS
// =============================================================================

// SaveSession inserts a session.
func (s *Store) SaveSession(ctx context.Context, sess Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	createdAt := sess.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, client_name, account_number, rate_card_json, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		sess.ID, sess.ClientName, sess.AccountNumber, sess.RateCardJSON,
		createdAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// GetSession returns a session by ID, or nil if it does not exist.
func (s *Store) GetSession(ctx context.Context, id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, client_name, account_number, rate_card_json, created_at
		FROM sessions WHERE id = ?`, id)

	sess, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return sess, nil
}

// ListSessions returns all sessions, newest first.
func (s *Store) ListSessions(ctx context.Context) ([]Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, client_name, account_number, rate_card_json, created_at
		FROM sessions ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, *sess)
	}
	return sessions, rows.Err()
}

// DeleteSession removes a session and, via cascade, its entries.
// Returns false if the session did not exist.
func (s *Store) DeleteSession(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(r rowScanner) (*Session, error) {
	var sess Session
	var createdAt string
	if err := r.Scan(&sess.ID, &sess.ClientName, &sess.AccountNumber, &sess.RateCardJSON, &createdAt); err != nil {
		return nil, err
	}
	t, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, err
	}
	sess.CreatedAt = t
	return &sess, nil
}

// =============================================================================
// ENTRY OPERATIONS
// =============================================================================

// AppendEntries adds entered rows to a session atomically, assigning
// positions after the current maximum so insertion order is preserved.
func (s *Store) AppendEntries(ctx context.Context, sessionID string, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var next int
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position), -1) + 1 FROM entries WHERE session_id = ?`,
		sessionID).Scan(&next); err != nil {
		return fmt.Errorf("failed to read entry positions: %w", err)
	}

	for i, e := range entries {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO entries (id, session_id, entry_date, kind, amount, position)
			VALUES (?, ?, ?, ?, ?, ?)`,
			e.ID, sessionID, e.Date.UTC().Format("2006-01-02"), e.Kind, e.Amount, next+i,
		)
		if err != nil {
			return fmt.Errorf("failed to append entry: %w", err)
		}
	}
	return tx.Commit()
}

// ListEntries returns a session's rows in insertion order.
func (s *Store) ListEntries(ctx context.Context, sessionID string) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, entry_date, kind, amount, position
		FROM entries WHERE session_id = ? ORDER BY position`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var date string
		if err := rows.Scan(&e.ID, &e.SessionID, &date, &e.Kind, &e.Amount, &e.Position); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		t, err := time.Parse("2006-01-02", date)
		if err != nil {
			return nil, fmt.Errorf("failed to parse entry date: %w", err)
		}
		e.Date = t
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// DeleteEntry removes one entered row. Returns false if it did not exist.
func (s *Store) DeleteEntry(ctx context.Context, sessionID, entryID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM entries WHERE session_id = ? AND id = ?`, sessionID, entryID)
	if err != nil {
		return false, fmt.Errorf("failed to delete entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
