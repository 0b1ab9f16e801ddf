package tui

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/BrunoViet/swapdesk/internal/asset"
	"github.com/BrunoViet/swapdesk/internal/client"
	"github.com/BrunoViet/swapdesk/internal/format"
	"github.com/BrunoViet/swapdesk/internal/swap"
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type swapField int

const (
	fieldSource swapField = iota
	fieldDestination
	fieldAmount
)

// swapRequest is the kind of session request a form has in flight.
type swapRequest int

const (
	requestNone swapRequest = iota
	requestEdit
	requestOther
)

// swapViewMsg carries the session view after a request.
type swapViewMsg struct {
	view    *swap.View
	err     error
	request swapRequest
}

type swapSubmittedMsg struct {
	res *client.SubmitResult
	err error
}

type swapActionKind int

const (
	actionSubmit swapActionKind = iota + 1
	actionFlip
	actionMax
	actionSelectSource
	actionSelectDestination
	actionDismiss
	actionReload
)

type swapAction struct {
	kind   swapActionKind
	symbol string
}

// swapFormModel talks to its session one request at a time, so the server
// applies intents in the order they were made. Amount keystrokes typed while
// a request is out are folded into one follow-up edit, and any other action
// waits until the amount on the server matches the input.
type swapFormModel struct {
	sessionID   string
	session     *swap.View
	focus       swapField
	amountInput textinput.Model
	inflight    swapRequest
	dirty       bool
	deferred    *swapAction
	err         error
	statusMsg   string
	width       int
}

func newSwapForm() swapFormModel {
	in := textinput.New()
	in.Placeholder = "0.0"
	in.CharLimit = 32
	in.Prompt = ""
	in.Cursor.SetMode(cursor.CursorStatic)
	in.Focus()
	return swapFormModel{focus: fieldAmount, amountInput: in}
}

func (m *swapFormModel) init(c *client.Client, sessionID string) tea.Cmd {
	m.sessionID = sessionID
	return func() tea.Msg {
		v, err := c.GetSession(context.Background(), sessionID)
		return swapViewMsg{view: v, err: err}
	}
}

func (m swapFormModel) update(msg tea.Msg, c *client.Client) (swapFormModel, tea.Cmd) {
	switch msg := msg.(type) {
	case swapViewMsg:
		if msg.request == requestNone && m.inflight != requestNone {
			// A fresher view is on its way.
			return m, nil
		}
		if msg.request != requestNone {
			m.inflight = requestNone
		}
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.err = nil
			m.session = msg.view
		}
		if m.dirty {
			return m, m.sendEdit(c)
		}
		m.syncInput()
		return m, m.runDeferred(c)

	case swapSubmittedMsg:
		m.inflight = requestNone
		if msg.err != nil {
			var apiErr *client.APIError
			if errors.As(msg.err, &apiErr) && len(apiErr.Fields) > 0 {
				// Field errors are part of the session view now.
				return m, m.start(c, swapAction{kind: actionReload})
			}
			m.err = msg.err
			return m, m.runDeferred(c)
		}
		m.err = nil
		m.session = &msg.res.View
		m.syncInput()
		m.statusMsg = fmt.Sprintf("Swap %s executed", shortID(msg.res.Receipt.ID))
		return m, m.runDeferred(c)

	case tea.KeyMsg:
		if m.session == nil || m.session.Loading {
			return m, nil
		}
		if m.session.Confirmation != nil {
			if key.Matches(msg, keys.Enter) || key.Matches(msg, keys.Escape) {
				return m, m.start(c, swapAction{kind: actionDismiss})
			}
			return m, nil
		}
		return m.updateKeys(msg, c)
	}
	return m, nil
}

func (m swapFormModel) updateKeys(msg tea.KeyMsg, c *client.Client) (swapFormModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		m.setFocus((m.focus + 2) % 3)
		return m, nil
	case key.Matches(msg, keys.Down):
		m.setFocus((m.focus + 1) % 3)
		return m, nil
	case key.Matches(msg, keys.Flip):
		return m, m.start(c, swapAction{kind: actionFlip})
	case key.Matches(msg, keys.Max):
		return m, m.start(c, swapAction{kind: actionMax})
	case key.Matches(msg, keys.Enter):
		m.statusMsg = ""
		return m, m.start(c, swapAction{kind: actionSubmit})
	}

	if m.focus == fieldAmount {
		// The input is replaced by the answer to a flip, max or select.
		if m.inflight == requestOther {
			return m, nil
		}
		before := m.amountInput.Value()
		var cmd tea.Cmd
		m.amountInput, cmd = m.amountInput.Update(msg)
		if m.amountInput.Value() == before {
			return m, cmd
		}
		if m.inflight == requestEdit {
			m.dirty = true
			return m, cmd
		}
		return m, tea.Batch(cmd, m.sendEdit(c))
	}

	selected := m.selected()
	var next string
	switch {
	case key.Matches(msg, keys.Left):
		next = cycleSymbol(m.session.Assets, selected, -1)
	case key.Matches(msg, keys.Right):
		next = cycleSymbol(m.session.Assets, selected, 1)
	case key.Matches(msg, keys.Clear):
		next = ""
	default:
		return m, nil
	}

	kind := actionSelectDestination
	if m.focus == fieldSource {
		kind = actionSelectSource
	}
	return m, m.start(c, swapAction{kind: kind, symbol: next})
}

// sendEdit sends the current input as the amount.
func (m *swapFormModel) sendEdit(c *client.Client) tea.Cmd {
	m.inflight = requestEdit
	m.dirty = false
	id, text := m.sessionID, m.amountInput.Value()
	return viewRequest(requestEdit, func(ctx context.Context) (*swap.View, error) {
		return c.EditAmount(ctx, id, text)
	})
}

// start issues a, or holds it until the request in flight has been answered.
// Only the latest held action survives.
func (m *swapFormModel) start(c *client.Client, a swapAction) tea.Cmd {
	if m.inflight != requestNone {
		m.deferred = &a
		return nil
	}
	m.inflight = requestOther
	id := m.sessionID
	switch a.kind {
	case actionSubmit:
		return func() tea.Msg {
			res, err := c.Submit(context.Background(), id)
			return swapSubmittedMsg{res: res, err: err}
		}
	case actionFlip:
		return viewRequest(requestOther, func(ctx context.Context) (*swap.View, error) {
			return c.Flip(ctx, id)
		})
	case actionMax:
		return viewRequest(requestOther, func(ctx context.Context) (*swap.View, error) {
			return c.SetMax(ctx, id)
		})
	case actionSelectSource:
		return viewRequest(requestOther, func(ctx context.Context) (*swap.View, error) {
			return c.SelectSource(ctx, id, a.symbol)
		})
	case actionSelectDestination:
		return viewRequest(requestOther, func(ctx context.Context) (*swap.View, error) {
			return c.SelectDestination(ctx, id, a.symbol)
		})
	case actionDismiss:
		return viewRequest(requestOther, func(ctx context.Context) (*swap.View, error) {
			return c.DismissConfirmation(ctx, id)
		})
	default:
		return viewRequest(requestOther, func(ctx context.Context) (*swap.View, error) {
			return c.GetSession(ctx, id)
		})
	}
}

func (m *swapFormModel) runDeferred(c *client.Client) tea.Cmd {
	if m.deferred == nil {
		return nil
	}
	a := *m.deferred
	m.deferred = nil
	return m.start(c, a)
}

// syncInput shows the server's amount whenever it differs from the input.
func (m *swapFormModel) syncInput() {
	if m.session == nil || m.amountInput.Value() == m.session.Form.SourceAmount {
		return
	}
	m.amountInput.SetValue(m.session.Form.SourceAmount)
	m.amountInput.CursorEnd()
}

func viewRequest(kind swapRequest, call func(context.Context) (*swap.View, error)) tea.Cmd {
	return func() tea.Msg {
		v, err := call(context.Background())
		return swapViewMsg{view: v, err: err, request: kind}
	}
}

func (m *swapFormModel) setFocus(f swapField) {
	m.focus = f
	if f == fieldAmount {
		m.amountInput.Focus()
	} else {
		m.amountInput.Blur()
	}
}

func (m *swapFormModel) selected() string {
	var a *asset.Asset
	if m.focus == fieldSource {
		a = m.session.Form.Source
	} else {
		a = m.session.Form.Destination
	}
	if a == nil {
		return ""
	}
	return a.Symbol
}

// cycleSymbol steps through the catalog, wrapping at both ends. From an empty
// selection it starts at the first (or last) entry.
func cycleSymbol(assets []asset.Asset, current string, step int) string {
	if len(assets) == 0 {
		return ""
	}
	idx := -1
	for i, a := range assets {
		if a.Symbol == current {
			idx = i
			break
		}
	}
	if idx < 0 {
		if step < 0 {
			return assets[len(assets)-1].Symbol
		}
		return assets[0].Symbol
	}
	n := len(assets)
	return assets[((idx+step)%n+n)%n].Symbol
}

func isNotFound(err error) bool {
	var apiErr *client.APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[len(id)-8:]
	}
	return id
}

// --- Views ---

func (m *swapFormModel) view() string {
	if m.session == nil || m.session.Loading {
		if m.err != nil {
			return errorStyle.Render("Error: " + m.err.Error())
		}
		return "Loading prices..."
	}
	v := m.session

	if v.Confirmation != nil {
		return m.viewConfirmation(v.Confirmation)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Swap"))
	b.WriteString("\n")

	b.WriteString(m.viewAssetField("From", fieldSource, v.Form.Source, v.SourceBalanceLabel, v.Error(swap.FieldSourceAsset)))
	b.WriteString("\n")

	amount := m.amountInput.View()
	amountBox := boxStyle
	if m.focus == fieldAmount {
		amountBox = focusedBoxStyle
	}
	amountLine := amountBox.Width(28).Render(amount)
	if v.SourceFiat != "" {
		amountLine = lipgloss.JoinHorizontal(lipgloss.Center, amountLine, dimStyle.Render("  ≈ "+v.SourceFiat))
	}
	b.WriteString(labelStyle.Render("Amount") + "\n" + amountLine + "\n")
	if msg := v.Error(swap.FieldSourceAmount); msg != "" {
		b.WriteString(errorStyle.Render("  "+msg) + "\n")
	}
	b.WriteString(dimStyle.Render("  m: max   f: flip") + "\n\n")

	b.WriteString(m.viewAssetField("To", fieldDestination, v.Form.Destination, v.DestinationBalanceLabel, v.Error(swap.FieldDestinationAsset)))
	b.WriteString("\n")

	receive := v.DestinationAmount
	if receive == "" {
		receive = dimStyle.Render("0.0")
	}
	receiveLine := boxStyle.Width(28).Render(receive)
	if v.DestinationFiat != "" {
		receiveLine = lipgloss.JoinHorizontal(lipgloss.Center, receiveLine, dimStyle.Render("  ≈ "+v.DestinationFiat))
	}
	b.WriteString(labelStyle.Render("You receive") + "\n" + receiveLine + "\n\n")

	if v.RateLabel != "" {
		b.WriteString(subtitleStyle.Render("  "+v.RateLabel) + "\n\n")
	} else if v.Form.Source != nil && v.Form.Destination != nil {
		b.WriteString(dimStyle.Render("  Rate unavailable") + "\n\n")
	}

	if v.CanSubmit {
		b.WriteString(buttonStyle.Render("CONFIRM SWAP"))
	} else {
		b.WriteString(disabledButtonStyle.Render("CONFIRM SWAP"))
	}
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString("\n" + errorStyle.Render("  Error: "+m.err.Error()) + "\n")
	} else if m.statusMsg != "" {
		b.WriteString("\n" + successStyle.Render("  "+m.statusMsg) + "\n")
	}
	return b.String()
}

func (m *swapFormModel) viewAssetField(label string, field swapField, a *asset.Asset, balance, errMsg string) string {
	var b strings.Builder

	name := dimStyle.Render("Select token")
	if a != nil {
		name = a.Symbol + "  " + dimStyle.Render(a.Name)
		if !a.HasPrice() {
			name += dimStyle.Render("  (no price)")
		}
	}
	picker := "‹ " + name + " ›"
	if m.focus == field {
		picker = selectedStyle.Render("‹ ") + name + selectedStyle.Render(" ›")
	}

	b.WriteString(labelStyle.Render(label))
	if balance != "" {
		b.WriteString(dimStyle.Render("Balance: " + balance))
	}
	b.WriteString("\n")
	if m.focus == field {
		b.WriteString(focusedBoxStyle.Width(28).Render(picker))
	} else {
		b.WriteString(boxStyle.Width(28).Render(picker))
	}
	b.WriteString("\n")
	if errMsg != "" {
		b.WriteString(errorStyle.Render("  "+errMsg) + "\n")
	}
	return b.String()
}

func (m *swapFormModel) viewConfirmation(r *swap.Receipt) string {
	var summary strings.Builder
	summary.WriteString(successStyle.Render("Swap Successful!") + "\n\n")
	summary.WriteString(fmt.Sprintf("You sent:      %s %s\n", r.SourceAmount, r.SourceSymbol))
	summary.WriteString(fmt.Sprintf("You received:  %s %s\n", r.DestinationAmount, r.DestinationSymbol))
	if r.Rate > 0 {
		summary.WriteString(dimStyle.Render(format.RateLabel(r.SourceSymbol, r.DestinationSymbol, r.Rate)) + "\n")
	}
	summary.WriteString("\n" + dimStyle.Render("Receipt "+r.ID))

	return modalStyle.Render(summary.String()) + "\n\n" + dimStyle.Render("  Press enter to close")
}
