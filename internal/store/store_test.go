package store

import (
	"context"
	"testing"
	"time"

	"github.com/BrunoViet/swapdesk/internal/swap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := Open()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func receipt(session, id, src, dst string, debit, credit float64, at time.Time) swap.Receipt {
	return swap.Receipt{
		ID:                  id,
		SessionID:           session,
		SourceSymbol:        src,
		SourceAmount:        "x",
		SourceQuantity:      debit,
		DestinationSymbol:   dst,
		DestinationAmount:   "y",
		DestinationQuantity: credit,
		Rate:                credit / debit,
		ExecutedAt:          at,
	}
}

func TestRecordAndGetSwap(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	r := receipt("s1", "r1", "BTC", "USDT", 2, 100000, at)
	require.NoError(t, s.RecordSwap(ctx, r))

	got, err := s.GetSwap(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, r, got)

	_, err = s.GetSwap(ctx, "missing")
	assert.ErrorIs(t, err, swap.ErrReceiptNotFound)
}

func TestRecordSwapRejectsBadRows(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	assert.Error(t, s.RecordSwap(ctx, receipt("s1", "a", "BTC", "BTC", 1, 1, time.Now())))
	assert.Error(t, s.RecordSwap(ctx, receipt("s1", "b", "BTC", "ETH", 1, 0, time.Now())))

	require.NoError(t, s.RecordSwap(ctx, receipt("s1", "c", "BTC", "ETH", 1, 1, time.Now())))
	assert.Error(t, s.RecordSwap(ctx, receipt("s1", "c", "BTC", "ETH", 1, 1, time.Now())), "duplicate id")
}

func TestSwapsAreImmutable(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	require.NoError(t, s.RecordSwap(ctx, receipt("s1", "r1", "BTC", "ETH", 1, 15, time.Now())))

	_, err := s.db.ExecContext(ctx, `UPDATE swaps SET rate = 0 WHERE id = 'r1'`)
	assert.Error(t, err)
}

func TestListSwapsBySession(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.RecordSwap(ctx, receipt("s1", "r1", "BTC", "USDT", 1, 50000, base)))
	require.NoError(t, s.RecordSwap(ctx, receipt("s1", "r2", "USDT", "ETH", 3000, 1, base.Add(time.Minute))))
	require.NoError(t, s.RecordSwap(ctx, receipt("s2", "r3", "ETH", "BTC", 1, 0.06, base)))

	got, err := s.ListSwaps(ctx, SwapFilter{SessionID: "s1"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "r2", got[0].ID, "newest first")
	assert.Equal(t, "r1", got[1].ID)

	got, err = s.ListSwaps(ctx, SwapFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, got, 1)

	n, err := s.DeleteSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	got, err = s.ListSwaps(ctx, SwapFilter{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "r3", got[0].ID)
}

func TestSessionVolume(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, s.RecordSwap(ctx, receipt("s1", "r1", "BTC", "USDT", 1, 50000, now)))
	require.NoError(t, s.RecordSwap(ctx, receipt("s1", "r2", "USDT", "BTC", 25000, 0.5, now)))
	require.NoError(t, s.RecordSwap(ctx, receipt("s2", "r3", "BTC", "ETH", 9, 9, now)))

	vols, err := s.SessionVolume(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, vols, 2)

	assert.Equal(t, "BTC", vols[0].Symbol)
	assert.Equal(t, 1.0, vols[0].Debited)
	assert.Equal(t, 0.5, vols[0].Credited)
	assert.Equal(t, 2, vols[0].Swaps)
	assert.Equal(t, -0.5, vols[0].Net())

	assert.Equal(t, "USDT", vols[1].Symbol)
	assert.Equal(t, 25000.0, vols[1].Net())
}

func TestStoresArePrivate(t *testing.T) {
	a := openTest(t)
	b := openTest(t)
	ctx := context.Background()

	require.NoError(t, a.RecordSwap(ctx, receipt("s1", "r1", "BTC", "ETH", 1, 15, time.Now())))

	got, err := b.ListSwaps(ctx, SwapFilter{})
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = a.ListSwaps(ctx, SwapFilter{})
	require.NoError(t, err)
	assert.Len(t, got, 1, "reads see writes on the pinned connection")
}
