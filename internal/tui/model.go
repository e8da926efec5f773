package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tailindex/internal/watch"
)

const (
	maxLines     = 2000
	headerHeight = 3
	footerHeight = 1
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	runningStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	idleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203"))
	stderrStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	logStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

// Refresher triggers an out-of-band listing refresh.
type Refresher interface {
	Refresh() bool
}

// Model represents the Bubble Tea state.
type Model struct {
	refresher Refresher
	listing   string

	viewport viewport.Model
	lines    []string
	follow   bool
	ready    bool

	state     watch.State
	statusMsg string
	err       error

	lastRefresh time.Time

	width  int
	height int
}

// New constructs a viewer for the listing at url.
func New(refresher Refresher, url string) *Model {
	return &Model{
		refresher: refresher,
		listing:   url,
		follow:    true,
		statusMsg: "Fetching listing…",
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		h := msg.Height - headerHeight - footerHeight
		if h < 1 {
			h = 1
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width, h)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = h
		}
		m.syncViewport()
		return m, nil

	case lineMsg:
		text := strings.TrimSpace(msg.Text)
		if msg.Stream == watch.Stderr {
			text = stderrStyle.Render(text)
		}
		m.appendLine(text)
		return m, nil

	case logMsg:
		m.appendLine(logStyle.Render(string(msg)))
		return m, nil

	case stateMsg:
		m.state = watch.State(msg)
		return m, nil

	case reportMsg:
		m.lastRefresh = msg.At
		m.err = msg.Err
		switch {
		case msg.Err != nil:
			m.statusMsg = "Listing unreachable, worker stopped."
		case msg.Candidate == nil:
			m.statusMsg = "No matching file yet."
		case msg.Decision.Action == watch.ChangedTo:
			m.statusMsg = "Switched to " + msg.Candidate.Name + "."
		default:
			m.statusMsg = "Still following " + msg.Candidate.Name + "."
		}
		return m, nil

	case refreshResultMsg:
		if msg.accepted {
			m.statusMsg = "Refreshing listing…"
		} else {
			m.statusMsg = "Refresh requested too soon, try again shortly."
		}
		return m, nil

	case sessionDoneMsg:
		m.err = msg.err
		return m, tea.Quit

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r":
			return m, refreshCmd(m.refresher)
		case "f":
			m.follow = !m.follow
			if m.follow {
				m.viewport.GotoBottom()
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("tailindex " + m.listing))
	b.WriteByte('\n')

	if m.state.Running {
		b.WriteString(runningStyle.Render(fmt.Sprintf("streaming %s (pid %d)", m.state.URL, m.state.PID)))
	} else {
		b.WriteString(idleStyle.Render("idle"))
	}
	b.WriteByte('\n')

	status := m.statusMsg
	if m.err != nil {
		status += fmt.Sprintf(" Error: %v", m.err)
	}
	b.WriteString(status)
	b.WriteByte('\n')

	if m.ready {
		b.WriteString(m.viewport.View())
		b.WriteByte('\n')
	}

	help := "Commands: q quit • r refresh • f follow"
	if !m.follow {
		help += " (paused)"
	}
	if !m.lastRefresh.IsZero() {
		help += fmt.Sprintf(" • last refresh %s", m.lastRefresh.Format(time.Kitchen))
	}
	b.WriteString(helpStyle.Render(help))

	return b.String()
}

func (m *Model) appendLine(s string) {
	m.lines = append(m.lines, s)
	if over := len(m.lines) - maxLines; over > 0 {
		m.lines = append(m.lines[:0], m.lines[over:]...)
	}
	m.syncViewport()
}

func (m *Model) syncViewport() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(strings.Join(m.lines, "\n"))
	if m.follow {
		m.viewport.GotoBottom()
	}
}

type lineMsg watch.Line

type logMsg string

type stateMsg watch.State

type reportMsg watch.Report

type refreshResultMsg struct{ accepted bool }

type sessionDoneMsg struct{ err error }

func refreshCmd(r Refresher) tea.Cmd {
	return func() tea.Msg {
		return refreshResultMsg{accepted: r.Refresh()}
	}
}
