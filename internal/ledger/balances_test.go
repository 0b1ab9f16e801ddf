package ledger

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCopiesSeed(t *testing.T) {
	seed := map[string]float64{"BTC": 2, "ETH": -1}
	l := New(seed)
	seed["BTC"] = 100

	assert.Equal(t, 2.0, l.Balance("BTC"))
	assert.Equal(t, 0.0, l.Balance("ETH"))
	assert.Equal(t, 0.0, l.Balance("DOGE"))
}

func TestDefaultSeedIsFresh(t *testing.T) {
	a := DefaultSeed()
	a["BTC"] = 0
	assert.Equal(t, 12.34, DefaultSeed()["BTC"])
}

func TestTransferAppliesBothSides(t *testing.T) {
	l := New(map[string]float64{"BTC": 5, "USDT": 10})

	tr, err := l.Transfer("BTC", "USDT", 2, 100000)
	require.NoError(t, err)

	assert.Equal(t, 3.0, l.Balance("BTC"))
	assert.Equal(t, 100010.0, l.Balance("USDT"))
	assert.Equal(t, 2.0, tr.Debited)
	assert.Equal(t, 100000.0, tr.Credited)
}

func TestTransferClampsDebit(t *testing.T) {
	l := New(map[string]float64{"BTC": 1.5})

	tr, err := l.Transfer("BTC", "ETH", 4, 60)
	require.NoError(t, err)

	assert.Equal(t, 0.0, l.Balance("BTC"))
	assert.Equal(t, 60.0, l.Balance("ETH"))
	assert.Equal(t, 1.5, tr.Debited, "debit is min(qty, previous balance)")
}

func TestTransferRejectsWithoutMutation(t *testing.T) {
	l := New(map[string]float64{"BTC": 1, "ETH": 1})
	before := l.Balances()

	_, err := l.Transfer("BTC", "BTC", 1, 1)
	assert.ErrorIs(t, err, ErrSameAsset)

	_, err = l.Transfer("BTC", "ETH", -1, 1)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = l.Transfer("BTC", "ETH", 1, math.NaN())
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = l.Transfer("", "ETH", 1, 1)
	assert.ErrorIs(t, err, ErrEmptySymbol)

	assert.Equal(t, before, l.Balances())
}

func TestTransferConcurrentNeverTorn(t *testing.T) {
	l := New(map[string]float64{"A": 1000, "B": 0})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = l.Transfer("A", "B", 1, 1)
		}()
		go func() {
			defer wg.Done()
			b := l.Balances()
			assert.InDelta(t, 1000.0, b["A"]+b["B"], 1e-9)
		}()
	}
	wg.Wait()

	assert.Equal(t, 950.0, l.Balance("A"))
	assert.Equal(t, 50.0, l.Balance("B"))
}

func TestHoldingsSorted(t *testing.T) {
	l := New(map[string]float64{"USDT": 1, "BTC": 2, "ETH": 3})
	h := l.Holdings()
	require.Len(t, h, 3)
	assert.Equal(t, "BTC", h[0].Symbol)
	assert.Equal(t, "ETH", h[1].Symbol)
	assert.Equal(t, "USDT", h[2].Symbol)
}
