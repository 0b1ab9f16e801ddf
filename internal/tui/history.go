package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/BrunoViet/swapdesk/internal/client"
	"github.com/BrunoViet/swapdesk/internal/format"
	"github.com/BrunoViet/swapdesk/internal/ledger"
	"github.com/BrunoViet/swapdesk/internal/swap"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

type historyLoadedMsg struct {
	swaps   []swap.Receipt
	volumes []ledger.Volume
	err     error
}

type historyModel struct {
	swaps   []swap.Receipt
	volumes []ledger.Volume
	cursor  int
	loading bool
	err     error
	width   int
	height  int
}

func (m *historyModel) init(c *client.Client, sessionID string) tea.Cmd {
	m.loading = true
	return func() tea.Msg {
		ctx := context.Background()
		swaps, err := c.Swaps(ctx, sessionID, 0)
		if err != nil {
			return historyLoadedMsg{err: err}
		}
		volumes, err := c.Volume(ctx, sessionID)
		return historyLoadedMsg{swaps: swaps, volumes: volumes, err: err}
	}
}

func (m historyModel) update(msg tea.Msg) (historyModel, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		m.loading = false
		m.swaps = msg.swaps
		m.volumes = msg.volumes
		m.err = msg.err
		if m.cursor >= len(m.swaps) {
			m.cursor = max(0, len(m.swaps)-1)
		}

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.swaps)-1 {
				m.cursor++
			}
		}
	}
	return m, nil
}

func (m *historyModel) selectedID() string {
	if m.cursor >= 0 && m.cursor < len(m.swaps) {
		return m.swaps[m.cursor].ID
	}
	return ""
}

func (m *historyModel) view() string {
	if m.loading {
		return "Loading swaps..."
	}
	if m.err != nil {
		return errorStyle.Render("Error: " + m.err.Error())
	}
	if len(m.swaps) == 0 {
		return dimStyle.Render("No swaps yet this session.")
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("History"))
	b.WriteString("\n")

	header := fmt.Sprintf("  %-10s %-19s %20s %20s", "RECEIPT", "TIME", "SENT", "RECEIVED")
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	maxRows := m.height - 8 - len(m.volumes)
	if maxRows < 1 {
		maxRows = 10
	}

	start := 0
	if m.cursor >= maxRows {
		start = m.cursor - maxRows + 1
	}

	for i := start; i < len(m.swaps) && i < start+maxRows; i++ {
		r := m.swaps[i]
		line := fmt.Sprintf("  %-10s %-19s %20s %20s",
			shortID(r.ID),
			r.ExecutedAt.Local().Format("2006-01-02 15:04:05"),
			r.SourceAmount+" "+r.SourceSymbol,
			r.DestinationAmount+" "+r.DestinationSymbol,
		)
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("> " + line[2:]))
		} else {
			b.WriteString(line)
		}
		b.WriteString("\n")
	}

	b.WriteString(fmt.Sprintf("\n  %d swaps\n", len(m.swaps)))

	if len(m.volumes) > 0 {
		b.WriteString("\n")
		b.WriteString(headerStyle.Render(fmt.Sprintf("  %-7s %18s %18s %18s", "TOKEN", "OUT", "IN", "NET")))
		b.WriteString("\n")
		for _, v := range m.volumes {
			net := v.Net()
			line := fmt.Sprintf("  %-7s %18s %18s %18s", v.Symbol,
				format.AssetAmount(v.Debited, format.DefaultMaxDecimals),
				format.AssetAmount(v.Credited, format.DefaultMaxDecimals),
				signed(net))
			switch {
			case net > 0:
				b.WriteString(creditStyle.Render(line))
			case net < 0:
				b.WriteString(debitStyle.Render(line))
			default:
				b.WriteString(line)
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

func signed(v float64) string {
	if v < 0 {
		return "-" + format.AssetAmount(-v, format.DefaultMaxDecimals)
	}
	return "+" + format.AssetAmount(v, format.DefaultMaxDecimals)
}
