package store

import (
	"context"
	"fmt"

	"github.com/BrunoViet/swapdesk/internal/ledger"
)

// SessionVolume aggregates every journaled swap of a session per symbol,
// sorted by symbol.
func (s *Store) SessionVolume(ctx context.Context, sessionID string) ([]ledger.Volume, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT symbol, SUM(debited), SUM(credited), COUNT(*) FROM (
			SELECT source_symbol AS symbol, source_quantity AS debited, 0.0 AS credited
			FROM swaps WHERE session_id = ?
			UNION ALL
			SELECT destination_symbol, 0.0, destination_quantity
			FROM swaps WHERE session_id = ?
		)
		GROUP BY symbol
		ORDER BY symbol`, sessionID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("session volume query: %w", err)
	}
	defer rows.Close()

	var out []ledger.Volume
	for rows.Next() {
		var v ledger.Volume
		if err := rows.Scan(&v.Symbol, &v.Debited, &v.Credited, &v.Swaps); err != nil {
			return nil, fmt.Errorf("scan volume: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
