package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

type SwapFilter struct {
	SessionID string
	Limit     int
	Offset    int
}

// Store journals confirmed swaps in a private in-memory database that lives
// as long as the Store.
type Store struct {
	db *sql.DB
}

// Open creates the journal. Every connection to ":memory:" is its own
// database, so the pool is pinned to a single connection.
func Open() (*Store, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open memory: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	s := &Store{db: db}
	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
