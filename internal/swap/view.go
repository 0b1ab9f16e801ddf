package swap

import (
	"github.com/BrunoViet/swapdesk/internal/asset"
	"github.com/BrunoViet/swapdesk/internal/format"
)

// View is a consistent snapshot of a controller for presentation layers.
type View struct {
	SessionID    string            `json:"session_id"`
	Loading      bool              `json:"loading"`
	Assets       []asset.Asset     `json:"assets"`
	Form         FormState         `json:"form"`
	Derived      Derived           `json:"derived"`
	Errors       []ValidationError `json:"errors"`
	CanSubmit    bool              `json:"can_submit"`
	Confirmation *Receipt          `json:"confirmation,omitempty"`

	RateLabel               string `json:"rate_label,omitempty"`
	DestinationAmount       string `json:"destination_amount"`
	SourceFiat              string `json:"source_fiat,omitempty"`
	DestinationFiat         string `json:"destination_fiat,omitempty"`
	SourceBalanceLabel      string `json:"source_balance_label,omitempty"`
	DestinationBalanceLabel string `json:"destination_balance_label,omitempty"`
}

// Error returns the first visible message for field, or "".
func (v View) Error(f Field) string {
	msg, _ := ErrorFor(v.Errors, f)
	return msg
}

func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := View{
		SessionID: c.id,
		Loading:   c.loading,
		Assets:    append([]asset.Asset(nil), c.catalog...),
		Form:      c.form,
		Errors:    append([]ValidationError(nil), c.errors...),
	}
	if c.confirmation != nil {
		r := *c.confirmation
		v.Confirmation = &r
	}
	if c.loading {
		return v
	}

	d := Derive(c.form, c.ledger)
	v.Derived = d
	v.CanSubmit = len(Validate(c.form, d.SufficientBalance)) == 0
	v.DestinationAmount = displayedDestination(d)

	if d.ExchangeRate != nil {
		v.RateLabel = format.RateLabel(c.form.Source.Symbol, c.form.Destination.Symbol, *d.ExchangeRate)
	}
	if s, ok := format.FiatValue(d.SourceFiatValue); ok {
		v.SourceFiat = s
	}
	if s, ok := format.FiatValue(d.DestinationFiatValue); ok {
		v.DestinationFiat = s
	}
	if c.form.Source != nil {
		v.SourceBalanceLabel = format.BalanceDisplay(d.SourceBalance, c.form.Source.Symbol)
	}
	if c.form.Destination != nil {
		v.DestinationBalanceLabel = format.BalanceDisplay(d.DestinationBalance, c.form.Destination.Symbol)
	}
	return v
}
