package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/BrunoViet/swapdesk/internal/swap"
	"github.com/google/uuid"
)

// RecordSwap appends a confirmed swap. It satisfies swap.Journal.
func (s *Store) RecordSwap(ctx context.Context, r swap.Receipt) error {
	if r.ID == "" {
		r.ID = uuid.Must(uuid.NewV7()).String()
	}
	if r.ExecutedAt.IsZero() {
		r.ExecutedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO swaps (id, session_id, source_symbol, source_amount, source_quantity,
			destination_symbol, destination_amount, destination_quantity, rate, executed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.SessionID, r.SourceSymbol, r.SourceAmount, r.SourceQuantity,
		r.DestinationSymbol, r.DestinationAmount, r.DestinationQuantity, r.Rate,
		r.ExecutedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert swap: %w", err)
	}
	return nil
}

func (s *Store) GetSwap(ctx context.Context, id string) (swap.Receipt, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+swapColumns+` FROM swaps WHERE id = ?`, id)
	r, err := scanSwap(row)
	if errors.Is(err, sql.ErrNoRows) {
		return swap.Receipt{}, fmt.Errorf("%w: %s", swap.ErrReceiptNotFound, id)
	}
	if err != nil {
		return swap.Receipt{}, fmt.Errorf("get swap: %w", err)
	}
	return r, nil
}

// ListSwaps returns receipts newest first.
func (s *Store) ListSwaps(ctx context.Context, filter SwapFilter) ([]swap.Receipt, error) {
	query := `SELECT ` + swapColumns + ` FROM swaps`
	args := []any{}

	if filter.SessionID != "" {
		query += ` WHERE session_id = ?`
		args = append(args, filter.SessionID)
	}
	query += ` ORDER BY executed_at DESC, id DESC`

	if filter.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, filter.Limit)
		if filter.Offset > 0 {
			query += fmt.Sprintf(` OFFSET %d`, filter.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list swaps: %w", err)
	}
	defer rows.Close()

	var out []swap.Receipt
	for rows.Next() {
		r, err := scanSwap(rows)
		if err != nil {
			return nil, fmt.Errorf("scan swap: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// DeleteSession drops every receipt of a closed session.
func (s *Store) DeleteSession(ctx context.Context, sessionID string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM swaps WHERE session_id = ?`, sessionID)
	if err != nil {
		return 0, fmt.Errorf("delete session swaps: %w", err)
	}
	return res.RowsAffected()
}

const swapColumns = `id, session_id, source_symbol, source_amount, source_quantity,
	destination_symbol, destination_amount, destination_quantity, rate, executed_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSwap(row rowScanner) (swap.Receipt, error) {
	var r swap.Receipt
	var executedAt string
	err := row.Scan(&r.ID, &r.SessionID, &r.SourceSymbol, &r.SourceAmount, &r.SourceQuantity,
		&r.DestinationSymbol, &r.DestinationAmount, &r.DestinationQuantity, &r.Rate, &executedAt)
	if err != nil {
		return swap.Receipt{}, err
	}
	r.ExecutedAt, _ = time.Parse(time.RFC3339Nano, executedAt)
	return r, nil
}
