package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/BrunoViet/swapdesk/internal/client"
	"github.com/BrunoViet/swapdesk/internal/format"
	"github.com/BrunoViet/swapdesk/internal/swap"
	tea "github.com/charmbracelet/bubbletea"
)

type swapDetailLoadedMsg struct {
	receipt *swap.Receipt
	err     error
}

type swapDetailModel struct {
	receipt *swap.Receipt
	loading bool
	err     error
	width   int
}

func (m *swapDetailModel) init(c *client.Client, sessionID, id string) tea.Cmd {
	m.loading = true
	return func() tea.Msg {
		r, err := c.GetSwap(context.Background(), sessionID, id)
		return swapDetailLoadedMsg{receipt: r, err: err}
	}
}

func (m swapDetailModel) update(msg tea.Msg) (swapDetailModel, tea.Cmd) {
	switch msg := msg.(type) {
	case swapDetailLoadedMsg:
		m.loading = false
		m.receipt = msg.receipt
		m.err = msg.err
	}
	return m, nil
}

func (m *swapDetailModel) view() string {
	if m.loading {
		return "Loading swap..."
	}
	if m.err != nil {
		return errorStyle.Render("Error: " + m.err.Error())
	}
	if m.receipt == nil {
		return ""
	}
	r := m.receipt

	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("Swap: %s", r.ID)))
	b.WriteString("\n")

	b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Executed:"), r.ExecutedAt.Local().Format("2006-01-02 15:04:05")))
	if r.Rate > 0 {
		b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Rate:"), format.RateLabel(r.SourceSymbol, r.DestinationSymbol, r.Rate)))
	}
	b.WriteString("\n")

	header := fmt.Sprintf("  %-4s %-7s %22s", "LEG", "TOKEN", "QUANTITY")
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")
	b.WriteString(debitStyle.Render(fmt.Sprintf("  %-4s %-7s %22s", "OUT", r.SourceSymbol, "-"+r.SourceAmount)))
	b.WriteString("\n")
	b.WriteString(creditStyle.Render(fmt.Sprintf("  %-4s %-7s %22s", "IN", r.DestinationSymbol, "+"+r.DestinationAmount)))
	b.WriteString("\n")

	b.WriteString("\n" + dimStyle.Render("  Press ESC to go back"))
	return b.String()
}
