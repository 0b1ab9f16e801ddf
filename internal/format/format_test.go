package format

import (
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrimTrailingZeros(t *testing.T) {
	cases := map[string]string{
		"1.2000":  "1.2",
		"1.0000":  "1",
		"10":      "10",
		"100":     "100",
		"0.00010": "0.0001",
		"5.":      "5",
	}
	for in, want := range cases {
		assert.Equal(t, want, TrimTrailingZeros(in), in)
	}
}

func TestAssetAmount(t *testing.T) {
	assert.Equal(t, "0", AssetAmount(0, DefaultMaxDecimals))
	assert.Equal(t, "0", AssetAmount(math.NaN(), DefaultMaxDecimals))
	assert.Equal(t, "0", AssetAmount(math.Inf(1), DefaultMaxDecimals))
	assert.Equal(t, "1234.5", AssetAmount(1234.500000, DefaultMaxDecimals))
	assert.Equal(t, "0.00001234", AssetAmount(0.000012340, DefaultMaxDecimals))
	assert.Equal(t, "12.3457", AssetAmount(12.345678, DefaultMaxDecimals))
	assert.Equal(t, "0.12345679", AssetAmount(0.123456789, DefaultMaxDecimals))
	assert.Equal(t, "1.23", AssetAmount(1.23456, 2))
	assert.Equal(t, "0.12", AssetAmount(0.123456, 2))
}

func TestMaxAmountNeverRoundsUp(t *testing.T) {
	assert.Equal(t, "1984.5634", MaxAmount(1984.563456, DefaultMaxDecimals))
	assert.Equal(t, "12.34", MaxAmount(12.34, DefaultMaxDecimals))
	assert.Equal(t, "0.12345678", MaxAmount(0.123456789, DefaultMaxDecimals))
	assert.Equal(t, "0", MaxAmount(0, DefaultMaxDecimals))
	assert.Equal(t, "0", MaxAmount(-1, DefaultMaxDecimals))
	assert.Equal(t, "0", MaxAmount(math.NaN(), DefaultMaxDecimals))

	for _, v := range []float64{1984.563456, 0.999999999, 101984.44, 7.77777777} {
		parsed, err := strconv.ParseFloat(MaxAmount(v, DefaultMaxDecimals), 64)
		require.NoError(t, err)
		assert.LessOrEqual(t, parsed, v)
	}
}

func TestBalanceDisplay(t *testing.T) {
	assert.Equal(t, "12.34 BTC", BalanceDisplay(12.34, "BTC"))
	assert.Equal(t, "125000", BalanceDisplay(125000, ""))
}

func TestFiatValue(t *testing.T) {
	_, ok := FiatValue(nil)
	assert.False(t, ok)

	nan := math.NaN()
	_, ok = FiatValue(&nan)
	assert.False(t, ok)

	v := 1234.5
	s, ok := FiatValue(&v)
	assert.True(t, ok)
	assert.Equal(t, "$1,234.50", s)

	small := 0.126
	s, _ = FiatValue(&small)
	assert.Equal(t, "$0.13", s)
}

func TestExchangeRate(t *testing.T) {
	assert.Equal(t, "0", ExchangeRate(0))
	assert.Equal(t, "0", ExchangeRate(-3))
	assert.Equal(t, "0", ExchangeRate(math.Inf(1)))
	assert.Equal(t, "50000", ExchangeRate(50000))
	assert.Equal(t, "1.2346", ExchangeRate(1.23456))
	assert.Equal(t, "0.00002", ExchangeRate(0.00002))
	assert.Equal(t, "1.23e-9", ExchangeRate(1.234e-9))
	assert.Equal(t, "5.00e-12", ExchangeRate(5e-12))
}

func TestRateLabel(t *testing.T) {
	assert.Equal(t, "1 BTC = 50000 USDT", RateLabel("BTC", "USDT", 50000))
}
