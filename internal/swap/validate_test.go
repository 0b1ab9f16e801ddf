package swap

import (
	"testing"

	"github.com/BrunoViet/swapdesk/internal/asset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func priced(symbol string, price float64) *asset.Asset {
	return &asset.Asset{Symbol: symbol, Price: &price}
}

type balances map[string]float64

func (b balances) Balance(symbol string) float64 { return b[symbol] }

func TestValidateEmptyForm(t *testing.T) {
	errs := Validate(FormState{}, true)
	require.Len(t, errs, 3)
	assert.Equal(t, ValidationError{Field: FieldSourceAsset, Message: MsgSelectSource}, errs[0])
	assert.Equal(t, ValidationError{Field: FieldDestinationAsset, Message: MsgSelectDest}, errs[1])
	assert.Equal(t, ValidationError{Field: FieldSourceAmount, Message: MsgEnterAmount}, errs[2])
}

func TestValidateAmountRules(t *testing.T) {
	base := FormState{Source: priced("BTC", 1), Destination: priced("ETH", 1)}

	tests := []struct {
		name       string
		amount     string
		sufficient bool
		want       string
	}{
		{"empty", "", true, MsgEnterAmount},
		{"literal zero", "0", true, MsgEnterAmount},
		{"insufficient wins over non-positive", "0.0", false, MsgInsufficient},
		{"zero with decimals", "0.00", true, MsgAmountNotPositive},
		{"lone point", ".", true, MsgAmountNotPositive},
		{"insufficient", "10", false, MsgInsufficient},
		{"valid", "1.5", true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := base
			form.SourceAmount = tt.amount
			got, _ := ErrorFor(Validate(form, tt.sufficient), FieldSourceAmount)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateIsPure(t *testing.T) {
	form := FormState{Source: priced("BTC", 1), Destination: priced("BTC", 1), SourceAmount: "1"}
	first := Validate(form, true)
	second := Validate(form, true)
	assert.Equal(t, first, second)
	require.Len(t, first, 1)
	assert.Equal(t, MsgSameAsset, first[0].Message)
}

func TestWithoutFields(t *testing.T) {
	errs := Validate(FormState{}, true)
	rest := withoutFields(errs, FieldSourceAsset, FieldSourceAmount)
	require.Len(t, rest, 1)
	assert.Equal(t, FieldDestinationAsset, rest[0].Field)
	assert.Len(t, errs, 3, "input slice is not modified")
}

func TestDerive(t *testing.T) {
	bal := balances{"BTC": 5, "USDT": 100}

	t.Run("full quote", func(t *testing.T) {
		d := Derive(FormState{Source: priced("BTC", 50000), Destination: priced("USDT", 1), SourceAmount: "2"}, bal)
		require.NotNil(t, d.ExchangeRate)
		assert.Equal(t, 50000.0, *d.ExchangeRate)
		assert.Equal(t, 100000.0, d.DestinationAmount)
		require.NotNil(t, d.SourceFiatValue)
		assert.Equal(t, 100000.0, *d.SourceFiatValue)
		assert.Equal(t, 5.0, d.SourceBalance)
		assert.Equal(t, 100.0, d.DestinationBalance)
		assert.True(t, d.SufficientBalance)
	})

	t.Run("no amount", func(t *testing.T) {
		d := Derive(FormState{Source: priced("BTC", 50000), Destination: priced("USDT", 1)}, bal)
		require.NotNil(t, d.ExchangeRate)
		assert.Zero(t, d.DestinationAmount)
		assert.Nil(t, d.SourceFiatValue)
		assert.Nil(t, d.DestinationFiatValue)
		assert.True(t, d.SufficientBalance)
	})

	t.Run("missing price", func(t *testing.T) {
		d := Derive(FormState{Source: &asset.Asset{Symbol: "BTC"}, Destination: priced("USDT", 1), SourceAmount: "1"}, bal)
		assert.Nil(t, d.ExchangeRate)
		assert.Zero(t, d.DestinationAmount)
		assert.Nil(t, d.SourceFiatValue)
		assert.True(t, d.SufficientBalance)
	})

	t.Run("insufficient", func(t *testing.T) {
		d := Derive(FormState{Source: priced("BTC", 1), SourceAmount: "5.01"}, bal)
		assert.False(t, d.SufficientBalance)
	})

	t.Run("garbage amount parses as zero", func(t *testing.T) {
		d := Derive(FormState{Source: priced("BTC", 1), Destination: priced("USDT", 1), SourceAmount: "."}, bal)
		assert.Zero(t, d.SourceQuantity)
		assert.True(t, d.SufficientBalance)
	})
}

func TestExchangeRateZeroDestination(t *testing.T) {
	assert.Zero(t, ExchangeRate(10, 0))
	assert.Equal(t, 2.0, ExchangeRate(10, 5))
	assert.Equal(t, 20.0, ToAmount(4, 5))
}
