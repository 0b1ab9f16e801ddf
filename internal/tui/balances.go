package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/BrunoViet/swapdesk/internal/asset"
	"github.com/BrunoViet/swapdesk/internal/client"
	"github.com/BrunoViet/swapdesk/internal/format"
	"github.com/BrunoViet/swapdesk/internal/ledger"
	tea "github.com/charmbracelet/bubbletea"
)

type balancesLoadedMsg struct {
	holdings []ledger.Holding
	assets   []asset.Asset
	err      error
}

type holdingRow struct {
	Symbol  string
	Name    string
	Balance float64
	Price   *float64
	Value   *float64
}

type balancesModel struct {
	rows    []holdingRow
	total   float64
	unknown int
	loading bool
	err     error
	width   int
	height  int
}

func (m *balancesModel) init(c *client.Client, sessionID string) tea.Cmd {
	m.loading = true
	return func() tea.Msg {
		ctx := context.Background()
		holdings, err := c.Balances(ctx, sessionID)
		if err != nil {
			return balancesLoadedMsg{err: err}
		}
		v, err := c.GetSession(ctx, sessionID)
		if err != nil {
			return balancesLoadedMsg{err: err}
		}
		return balancesLoadedMsg{holdings: holdings, assets: v.Assets}
	}
}

func (m balancesModel) update(msg tea.Msg) (balancesModel, tea.Cmd) {
	switch msg := msg.(type) {
	case balancesLoadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.compute(msg.holdings, msg.assets)
		}
	}
	return m, nil
}

// compute values each holding at the catalog price. Holdings without a
// usable price are listed but left out of the total.
func (m *balancesModel) compute(holdings []ledger.Holding, assets []asset.Asset) {
	m.rows = make([]holdingRow, 0, len(holdings))
	m.total = 0
	m.unknown = 0
	for _, h := range holdings {
		row := holdingRow{Symbol: h.Symbol, Name: asset.DisplayName(h.Symbol), Balance: h.Balance}
		if a, ok := asset.Lookup(assets, h.Symbol); ok && a.HasPrice() {
			price := *a.Price
			value := h.Balance * price
			row.Price = &price
			row.Value = &value
			m.total += value
		} else if h.Balance > 0 {
			m.unknown++
		}
		m.rows = append(m.rows, row)
	}
}

func (m *balancesModel) view() string {
	if m.loading {
		return "Loading balances..."
	}
	if m.err != nil {
		return errorStyle.Render("Error: " + m.err.Error())
	}
	if len(m.rows) == 0 {
		return dimStyle.Render("No balances.")
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Balances"))
	b.WriteString("\n")

	header := fmt.Sprintf("  %-7s %-14s %18s %16s %18s", "TOKEN", "NAME", "BALANCE", "PRICE", "VALUE")
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	for _, r := range m.rows {
		price, value := "-", "-"
		if r.Price != nil {
			price, _ = format.FiatValue(r.Price)
		}
		if r.Value != nil {
			value, _ = format.FiatValue(r.Value)
		}
		line := fmt.Sprintf("  %-7s %-14s %18s %16s %18s",
			r.Symbol, truncate(r.Name, 14), format.AssetAmount(r.Balance, format.DefaultMaxDecimals), price, value)
		if r.Balance == 0 {
			b.WriteString(dimStyle.Render(line))
		} else {
			b.WriteString(line)
		}
		b.WriteString("\n")
	}

	total := m.total
	totalStr, _ := format.FiatValue(&total)
	b.WriteString(fmt.Sprintf("  %s\n", strings.Repeat("─", 77)))
	b.WriteString(successStyle.Render(fmt.Sprintf("  %-59s %18s", "Total value", totalStr)))
	b.WriteString("\n\n")
	if m.unknown > 0 {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  %d holding(s) have no price and are excluded from the total.", m.unknown)) + "\n")
	}
	b.WriteString(dimStyle.Render("  r: refresh") + "\n")
	return b.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-2] + ".."
}
