package tui

import (
	"context"

	"github.com/BrunoViet/swapdesk/internal/client"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type mode int

const (
	modeSwap mode = iota
	modeBalances
	modeHistory
	modeSwapDetail
)

var tabModes = []mode{modeSwap, modeBalances, modeHistory}

func tabLabel(m mode) string {
	switch m {
	case modeSwap:
		return "Swap"
	case modeBalances:
		return "Balances"
	case modeHistory:
		return "History"
	default:
		return ""
	}
}

type sessionCreatedMsg struct {
	id  string
	err error
}

type App struct {
	client        *client.Client
	sessionID     string
	mode          mode
	tabIndex      int
	width, height int
	err           error

	swapForm   swapFormModel
	balances   balancesModel
	history    historyModel
	swapDetail swapDetailModel
}

func NewApp(c *client.Client) *App {
	return &App{
		client:   c,
		mode:     modeSwap,
		swapForm: newSwapForm(),
	}
}

func (a *App) Init() tea.Cmd {
	return a.openSession()
}

func (a *App) openSession() tea.Cmd {
	return func() tea.Msg {
		v, err := a.client.CreateSession(context.Background())
		if err != nil {
			return sessionCreatedMsg{err: err}
		}
		return sessionCreatedMsg{id: v.SessionID}
	}
}

// Close releases the server-side session.
func (a *App) Close() {
	if a.sessionID != "" {
		_ = a.client.CloseSession(context.Background(), a.sessionID)
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.swapForm.width = msg.Width
		a.balances.width = msg.Width
		a.balances.height = msg.Height - 6
		a.history.width = msg.Width
		a.history.height = msg.Height - 6
		a.swapDetail.width = msg.Width
		return a, nil

	case sessionCreatedMsg:
		if msg.err != nil {
			a.err = msg.err
			return a, nil
		}
		a.err = nil
		a.sessionID = msg.id
		return a, a.swapForm.init(a.client, a.sessionID)
	}

	// Route data-loaded messages to their sub-model regardless of active mode.
	switch typedMsg := msg.(type) {
	case swapViewMsg:
		if typedMsg.err != nil && isNotFound(typedMsg.err) {
			// The server forgot the session (restart); start a new one.
			a.sessionID = ""
			a.swapForm = newSwapForm()
			a.swapForm.width = a.width
			return a, a.openSession()
		}
		var cmd tea.Cmd
		a.swapForm, cmd = a.swapForm.update(msg, a.client)
		return a, cmd
	case swapSubmittedMsg:
		var cmd tea.Cmd
		a.swapForm, cmd = a.swapForm.update(msg, a.client)
		return a, cmd
	case balancesLoadedMsg:
		var cmd tea.Cmd
		a.balances, cmd = a.balances.update(msg)
		return a, cmd
	case historyLoadedMsg:
		var cmd tea.Cmd
		a.history, cmd = a.history.update(msg)
		return a, cmd
	case swapDetailLoadedMsg:
		var cmd tea.Cmd
		a.swapDetail, cmd = a.swapDetail.update(msg)
		return a, cmd
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit

		case key.Matches(msg, keys.Tab):
			a.tabIndex = (a.tabIndex + 1) % len(tabModes)
			a.mode = tabModes[a.tabIndex]
			return a, a.refreshTab()

		case key.Matches(msg, keys.ShiftTab):
			a.tabIndex = (a.tabIndex - 1 + len(tabModes)) % len(tabModes)
			a.mode = tabModes[a.tabIndex]
			return a, a.refreshTab()

		case key.Matches(msg, keys.Escape):
			if a.mode == modeSwapDetail {
				a.mode = modeHistory
				return a, nil
			}

		case key.Matches(msg, keys.Refresh):
			if a.mode == modeBalances || a.mode == modeHistory {
				return a, a.refreshTab()
			}

		case key.Matches(msg, keys.Enter):
			if a.mode == modeHistory {
				if id := a.history.selectedID(); id != "" {
					a.mode = modeSwapDetail
					return a, a.swapDetail.init(a.client, a.sessionID, id)
				}
				return a, nil
			}
		}
	}

	if a.sessionID == "" {
		return a, nil
	}

	// Delegate update to active sub-model
	var cmd tea.Cmd
	switch a.mode {
	case modeSwap:
		a.swapForm, cmd = a.swapForm.update(msg, a.client)
	case modeBalances:
		a.balances, cmd = a.balances.update(msg)
	case modeHistory:
		a.history, cmd = a.history.update(msg)
	case modeSwapDetail:
		a.swapDetail, cmd = a.swapDetail.update(msg)
	}
	return a, cmd
}

func (a *App) refreshTab() tea.Cmd {
	if a.sessionID == "" {
		return nil
	}
	switch a.mode {
	case modeSwap:
		return a.swapForm.init(a.client, a.sessionID)
	case modeBalances:
		return a.balances.init(a.client, a.sessionID)
	case modeHistory:
		return a.history.init(a.client, a.sessionID)
	}
	return nil
}

func (a *App) View() string {
	tabs := ""
	for i, m := range tabModes {
		label := tabLabel(m)
		if i == a.tabIndex {
			tabs += activeTabStyle.Render(label)
		} else {
			tabs += inactiveTabStyle.Render(label)
		}
		if i < len(tabModes)-1 {
			tabs += " "
		}
	}

	var content string
	switch {
	case a.sessionID == "" && a.err == nil:
		content = "Opening session..."
	case a.sessionID == "":
		content = ""
	default:
		switch a.mode {
		case modeSwap:
			content = a.swapForm.view()
		case modeBalances:
			content = a.balances.view()
		case modeHistory:
			content = a.history.view()
		case modeSwapDetail:
			content = a.swapDetail.view()
		}
	}

	status := ""
	if a.err != nil {
		status = errorStyle.Render(a.err.Error())
	}

	helpText := dimStyle.Render("tab:switch  ↑/↓:field  ←/→:token  f:flip  m:max  enter:swap  r:refresh  q:quit")

	return lipgloss.JoinVertical(lipgloss.Left,
		tabs,
		"",
		content,
		"",
		status,
		helpText,
	)
}
