// Package sqlite implements the SQLite storage backend for the Capsules
// task engine. One database file per data directory holds the full tenant
// graph; relation edges live in join tables and deletes cascade through
// foreign keys.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/capsules/pkg/types"
)

// dbFileName is the SQLite database file created inside DataDir.
const dbFileName = "capsules.db"

// querier is satisfied by both *sql.DB and *sql.Tx, letting every table
// accessor run against the pooled connection or a transaction.
type querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// Store implements types.Store on SQLite.
type Store struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB
	q        querier
	inTx     bool
}

var _ types.Store = (*Store)(nil)

// NewStore creates a new SQLite store instance.
// The store is not attached; call Attach with a Config to initialize.
func NewStore() *Store {
	return &Store{}
}

// Attach opens (or creates) the database under config.DataDir and installs
// the schema on first use. Returns ErrAlreadyAttached if already attached.
func (s *Store) Attach(config types.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.attached {
		return types.ErrAlreadyAttached
	}

	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}

	dbPath := filepath.Join(dataDir, dbFileName)
	_, statErr := os.Stat(dbPath)
	fresh := os.IsNotExist(statErr)

	// foreign_keys must be set per connection; the DSN pragma applies it
	// to every pooled connection.
	db, err := sql.Open("sqlite", "file:"+dbPath+"?_pragma=foreign_keys(1)")
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	if fresh {
		if err := installSchema(db); err != nil {
			db.Close()
			return fmt.Errorf("install schema: %w", err)
		}
	}

	s.db = db
	s.q = db
	s.config = config
	s.attached = true

	return nil
}

// Detach closes the database. Idempotent: detaching a detached store is a
// no-op. After Detach, operations return ErrStoreDetached.
func (s *Store) Detach() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.attached {
		return nil
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			return err
		}
		s.db = nil
	}
	s.q = nil
	s.attached = false

	return nil
}

// Atomic runs fn against a store bound to one transaction. The transaction
// commits when fn returns nil and rolls back otherwise. A nested Atomic
// call joins the enclosing transaction instead of opening a new one.
func (s *Store) Atomic(fn func(types.Store) error) error {
	s.mu.RLock()
	if !s.attached {
		s.mu.RUnlock()
		return types.ErrStoreDetached
	}
	if s.inTx {
		s.mu.RUnlock()
		return fn(s)
	}
	db := s.db
	config := s.config
	s.mu.RUnlock()

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	txStore := &Store{
		attached: true,
		config:   config,
		db:       db,
		q:        tx,
		inTx:     true,
	}
	if err := fn(txStore); err != nil {
		return err
	}
	return tx.Commit()
}

// Tasks returns the task store.
func (s *Store) Tasks() types.TaskStore { return &taskStore{s} }

// Capsules returns the capsule store.
func (s *Store) Capsules() types.CapsuleStore { return &capsuleStore{s} }

// Users returns the user store.
func (s *Store) Users() types.UserStore { return &userStore{s} }

// Organizations returns the organization store.
func (s *Store) Organizations() types.OrganizationStore { return &organizationStore{s} }

// Tags returns the tag store.
func (s *Store) Tags() types.TagStore { return &tagStore{s} }

// History returns the history store.
func (s *Store) History() types.HistoryStore { return &historyStore{s} }

// conn returns the active querier, or ErrStoreDetached.
func (s *Store) conn() (querier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.attached {
		return nil, types.ErrStoreDetached
	}
	return s.q, nil
}

// installSchema creates all tables and indexes inside one transaction.
func installSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, ddl := range schemaDDL {
		if _, err := tx.Exec(ddl); err != nil {
			return fmt.Errorf("creating table: %w", err)
		}
	}
	for _, ddl := range indexDDL {
		if _, err := tx.Exec(ddl); err != nil {
			return fmt.Errorf("creating index: %w", err)
		}
	}
	return tx.Commit()
}

// generateID generates a new UUID v7 for entity IDs.
func generateID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to UUID v4 if v7 generation fails
		return uuid.New().String()
	}
	return id.String()
}

// formatTime serializes a timestamp for storage.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTime deserializes a stored timestamp.
func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// nullTime serializes an optional timestamp, mapping nil to SQL NULL.
func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

// scanNullTime deserializes an optional timestamp column.
func scanNullTime(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	t, err := parseTime(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
