package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

func (s *Store) migrate(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		)
	`); err != nil {
		return fmt.Errorf("create schema_version: %w", err)
	}

	var version int
	err = tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&version)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	if version < 1 {
		if err := migrateV1(ctx, tx); err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
	}

	return tx.Commit()
}

func migrateV1(ctx context.Context, tx *sql.Tx) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS swaps (
			id                   TEXT PRIMARY KEY,
			session_id           TEXT NOT NULL,
			source_symbol        TEXT NOT NULL,
			source_amount        TEXT NOT NULL,
			source_quantity      REAL NOT NULL CHECK (source_quantity > 0),
			destination_symbol   TEXT NOT NULL,
			destination_amount   TEXT NOT NULL,
			destination_quantity REAL NOT NULL CHECK (destination_quantity > 0),
			rate                 REAL NOT NULL DEFAULT 0,
			executed_at          TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now')),
			CHECK (source_symbol != destination_symbol)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_swaps_session ON swaps(session_id, executed_at)`,

		// Receipts are append-only.
		`CREATE TRIGGER IF NOT EXISTS trg_swaps_immutable
		BEFORE UPDATE ON swaps
		BEGIN
			SELECT RAISE(ABORT, 'swap receipts cannot be modified');
		END`,

		`INSERT INTO schema_version (version) VALUES (1)`,
	}

	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			head, _, _ := strings.Cut(stmt, "\n")
			return fmt.Errorf("exec %q: %w", head, err)
		}
	}
	return nil
}
