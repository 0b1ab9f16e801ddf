package ledger

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"time"
)

// Transfer records one applied debit/credit pair.
type Transfer struct {
	SourceSymbol      string    `json:"source_symbol"`
	DestinationSymbol string    `json:"destination_symbol"`
	Debited           float64   `json:"debited"`
	Credited          float64   `json:"credited"`
	AppliedAt         time.Time `json:"applied_at"`
}

// Holding is a single symbol balance, used for sorted listings.
type Holding struct {
	Symbol  string  `json:"symbol"`
	Balance float64 `json:"balance"`
}

// Ledger is an in-memory symbol -> quantity map. Balances never go below zero.
type Ledger struct {
	mu       sync.RWMutex
	balances map[string]float64
}

// New copies seed into a fresh ledger. Negative or non-finite seeds start at zero.
func New(seed map[string]float64) *Ledger {
	l := &Ledger{balances: make(map[string]float64, len(seed))}
	for sym, qty := range seed {
		if !validQuantity(qty) {
			qty = 0
		}
		l.balances[sym] = qty
	}
	return l
}

// DefaultSeed returns a fresh copy of the starting balances.
func DefaultSeed() map[string]float64 {
	return map[string]float64{
		"BTC":   12.34,
		"ETH":   25.12,
		"SWTH":  125000,
		"USDC":  3421.55,
		"USDT":  1984.44,
		"BNB":   80.25,
		"SOL":   320.5,
		"ADA":   4500,
		"DOT":   980.2,
		"MATIC": 5100.67,
		"AVAX":  150.12,
		"LINK":  900.78,
		"UNI":   1120.45,
		"ATOM":  640.33,
		"XRP":   8600,
	}
}

// Balance returns the available quantity for symbol; unknown symbols hold zero.
func (l *Ledger) Balance(symbol string) float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balances[symbol]
}

// Balances returns a copy of every balance.
func (l *Ledger) Balances() map[string]float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make(map[string]float64, len(l.balances))
	for sym, qty := range l.balances {
		out[sym] = qty
	}
	return out
}

// Holdings returns every balance sorted by symbol.
func (l *Ledger) Holdings() []Holding {
	all := l.Balances()
	out := make([]Holding, 0, len(all))
	for sym, qty := range all {
		out = append(out, Holding{Symbol: sym, Balance: qty})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// Transfer debits sourceQty from source (clamped at zero) and credits destQty
// to dest. Both writes happen under one lock; a rejected transfer changes nothing.
func (l *Ledger) Transfer(source, dest string, sourceQty, destQty float64) (Transfer, error) {
	if source == "" || dest == "" {
		return Transfer{}, ErrEmptySymbol
	}
	if source == dest {
		return Transfer{}, fmt.Errorf("%w: %s", ErrSameAsset, source)
	}
	if !validQuantity(sourceQty) || !validQuantity(destQty) {
		return Transfer{}, fmt.Errorf("%w: debit %v, credit %v", ErrInvalidQuantity, sourceQty, destQty)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	prev := l.balances[source]
	debited := math.Min(sourceQty, prev)
	newSource := math.Max(0, prev-sourceQty)
	newDest := l.balances[dest] + destQty

	l.balances[source] = newSource
	l.balances[dest] = newDest

	return Transfer{
		SourceSymbol:      source,
		DestinationSymbol: dest,
		Debited:           debited,
		Credited:          destQty,
		AppliedAt:         time.Now().UTC(),
	}, nil
}

func validQuantity(q float64) bool {
	return !math.IsNaN(q) && !math.IsInf(q, 0) && q >= 0
}
