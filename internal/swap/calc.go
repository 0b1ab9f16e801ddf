package swap

import (
	"math"
	"strconv"

	"github.com/BrunoViet/swapdesk/internal/asset"
)

// FormState is the raw user input. The destination amount is never stored;
// it is always derived.
type FormState struct {
	Source       *asset.Asset `json:"source,omitempty"`
	Destination  *asset.Asset `json:"destination,omitempty"`
	SourceAmount string       `json:"source_amount"`
}

// BalanceReader is the read side of the ledger.
type BalanceReader interface {
	Balance(symbol string) float64
}

// Derived is recomputed from FormState and balances on every read.
type Derived struct {
	ExchangeRate         *float64 `json:"exchange_rate,omitempty"`
	SourceQuantity       float64  `json:"source_quantity"`
	DestinationAmount    float64  `json:"destination_amount"`
	SourceFiatValue      *float64 `json:"source_fiat_value,omitempty"`
	DestinationFiatValue *float64 `json:"destination_fiat_value,omitempty"`
	SourceBalance        float64  `json:"source_balance"`
	DestinationBalance   float64  `json:"destination_balance"`
	SufficientBalance    bool     `json:"sufficient_balance"`
}

// ExchangeRate is destination units per source unit. A zero destPrice yields
// 0, which callers treat as "no rate".
func ExchangeRate(sourcePrice, destPrice float64) float64 {
	if destPrice == 0 {
		return 0
	}
	return sourcePrice / destPrice
}

func ToAmount(sourceAmount, rate float64) float64 {
	return sourceAmount * rate
}

// ParseAmount reads the amount field for arithmetic. Anything unparsable is 0.
func ParseAmount(text string) float64 {
	v, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Derive computes every dependent field of the form.
func Derive(form FormState, balances BalanceReader) Derived {
	d := Derived{SufficientBalance: true}
	amount := ParseAmount(form.SourceAmount)
	d.SourceQuantity = amount

	if form.Source != nil && balances != nil {
		d.SourceBalance = balances.Balance(form.Source.Symbol)
	}
	if form.Destination != nil && balances != nil {
		d.DestinationBalance = balances.Balance(form.Destination.Symbol)
	}

	if form.Source.HasPrice() && form.Destination.HasPrice() {
		rate := ExchangeRate(*form.Source.Price, *form.Destination.Price)
		d.ExchangeRate = &rate
		if amount > 0 {
			d.DestinationAmount = ToAmount(amount, rate)
		}
	}

	if form.Source.HasPrice() && amount > 0 {
		v := amount * *form.Source.Price
		d.SourceFiatValue = &v
	}
	if form.Destination.HasPrice() && d.DestinationAmount > 0 {
		v := d.DestinationAmount * *form.Destination.Price
		d.DestinationFiatValue = &v
	}

	if form.Source != nil && amount > 0 {
		d.SufficientBalance = amount <= d.SourceBalance
	}
	return d
}
