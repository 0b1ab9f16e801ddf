package asset

import (
	"strings"
)

// DefaultIconBaseURL hosts one SVG per uppercased symbol.
const DefaultIconBaseURL = "https://raw.githubusercontent.com/Switcheo/token-icons/main/tokens"

type Asset struct {
	Symbol  string   `json:"symbol"`
	Name    string   `json:"name"`
	Price   *float64 `json:"price,omitempty"`
	IconURL string   `json:"icon_url"`
}

// HasPrice reports whether the asset carries a usable (positive) unit price.
func (a *Asset) HasPrice() bool {
	return a != nil && a.Price != nil && *a.Price > 0
}

// Def is a static catalog entry.
type Def struct {
	Symbol      string
	Name        string
	CoinGeckoID string
}

var Definitions = []Def{
	{Symbol: "SWTH", Name: "Switcheo", CoinGeckoID: "switcheo"},
	{Symbol: "ETH", Name: "Ethereum", CoinGeckoID: "ethereum"},
	{Symbol: "BTC", Name: "Bitcoin", CoinGeckoID: "bitcoin"},
	{Symbol: "USDC", Name: "USD Coin", CoinGeckoID: "usd-coin"},
	{Symbol: "USDT", Name: "Tether", CoinGeckoID: "tether"},
	{Symbol: "BNB", Name: "Binance Coin", CoinGeckoID: "binancecoin"},
	{Symbol: "SOL", Name: "Solana", CoinGeckoID: "solana"},
	{Symbol: "ADA", Name: "Cardano", CoinGeckoID: "cardano"},
	{Symbol: "DOT", Name: "Polkadot", CoinGeckoID: "polkadot"},
	{Symbol: "MATIC", Name: "Polygon", CoinGeckoID: "matic-network"},
	{Symbol: "AVAX", Name: "Avalanche", CoinGeckoID: "avalanche-2"},
	{Symbol: "LINK", Name: "Chainlink", CoinGeckoID: "chainlink"},
	{Symbol: "UNI", Name: "Uniswap", CoinGeckoID: "uniswap"},
	{Symbol: "ATOM", Name: "Cosmos", CoinGeckoID: "cosmos"},
	{Symbol: "XRP", Name: "Ripple", CoinGeckoID: "ripple"},
}

// DefaultSymbols returns the catalog symbols in display order.
func DefaultSymbols() []string {
	out := make([]string, len(Definitions))
	for i, d := range Definitions {
		out[i] = d.Symbol
	}
	return out
}

// CoinGeckoIDs maps symbol -> CoinGecko asset id.
func CoinGeckoIDs() map[string]string {
	out := make(map[string]string, len(Definitions))
	for _, d := range Definitions {
		out[d.Symbol] = d.CoinGeckoID
	}
	return out
}

// DisplayName falls back to the symbol itself for unknown assets.
func DisplayName(symbol string) string {
	for _, d := range Definitions {
		if d.Symbol == symbol {
			return d.Name
		}
	}
	return symbol
}

// IconURL is a pure template: <base>/<SYMBOL>.svg.
func IconURL(base, symbol string) string {
	if base == "" {
		base = DefaultIconBaseURL
	}
	return strings.TrimRight(base, "/") + "/" + strings.ToUpper(symbol) + ".svg"
}
