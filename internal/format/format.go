package format

import (
	"math"
	"strconv"
	"strings"

	"github.com/leekchan/accounting"
	"github.com/shopspring/decimal"
)

// DefaultMaxDecimals is the precision used for sub-unit asset amounts.
const DefaultMaxDecimals = 8

// MinRateDisplay is the smallest rate printed in fixed notation.
const MinRateDisplay = 1e-8

var usd = accounting.Accounting{Symbol: "$", Precision: 2, Thousand: ",", Decimal: "."}

// TrimTrailingZeros removes redundant zeros after the decimal point and a
// dangling point. Integers are returned unchanged.
func TrimTrailingZeros(value string) string {
	if !strings.Contains(value, ".") {
		return value
	}
	value = strings.TrimRight(value, "0")
	return strings.TrimSuffix(value, ".")
}

// AssetAmount formats a quantity: at most min(4, maxDecimals) decimals for
// values >= 1, maxDecimals below 1, trailing zeros trimmed.
func AssetAmount(value float64, maxDecimals int) string {
	if !finite(value) || value == 0 {
		return "0"
	}
	if maxDecimals < 0 {
		maxDecimals = 0
	}
	decimals := maxDecimals
	if value >= 1 {
		decimals = min(4, maxDecimals)
	}
	return fixed(value, decimals)
}

// MaxAmount is AssetAmount rounded toward zero, so the text never parses to
// more than value.
func MaxAmount(value float64, maxDecimals int) string {
	if !finite(value) || value <= 0 {
		return "0"
	}
	if maxDecimals < 0 {
		maxDecimals = 0
	}
	decimals := maxDecimals
	if value >= 1 {
		decimals = min(4, maxDecimals)
	}
	return TrimTrailingZeros(decimal.NewFromFloat(value).Truncate(int32(decimals)).StringFixed(int32(decimals)))
}

// BalanceDisplay renders a balance, suffixed with symbol when one is given.
func BalanceDisplay(value float64, symbol string) string {
	amount := AssetAmount(value, DefaultMaxDecimals)
	if symbol == "" {
		return amount
	}
	return amount + " " + symbol
}

// FiatValue renders a USD value such as "$1,234.50". The second return is
// false when value is nil or not finite.
func FiatValue(value *float64) (string, bool) {
	if value == nil || !finite(*value) {
		return "", false
	}
	return usd.FormatMoneyFloat64(*value), true
}

// ExchangeRate renders destination units per source unit.
func ExchangeRate(rate float64) string {
	if !finite(rate) || rate <= 0 {
		return "0"
	}
	if rate < MinRateDisplay {
		return exponential(rate)
	}
	decimals := 8
	if rate >= 1 {
		decimals = 4
	}
	return fixed(rate, decimals)
}

// RateLabel renders "1 SRC = <rate> DST".
func RateLabel(source, destination string, rate float64) string {
	return "1 " + source + " = " + ExchangeRate(rate) + " " + destination
}

func fixed(value float64, decimals int) string {
	return TrimTrailingZeros(decimal.NewFromFloat(value).StringFixed(int32(decimals)))
}

// exponential prints two fractional digits with an unpadded exponent, e.g. 1.23e-9.
func exponential(value float64) string {
	s := strconv.FormatFloat(value, 'e', 2, 64)
	mantissa, exp, ok := strings.Cut(s, "e")
	if !ok {
		return s
	}
	sign := exp[:1]
	digits := strings.TrimLeft(exp[1:], "0")
	if digits == "" {
		digits = "0"
	}
	return mantissa + "e" + sign + digits
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
