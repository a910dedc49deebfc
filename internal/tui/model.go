// Package tui renders the console document in a scrollable terminal pane
// using bubbletea. It is a thin consumer: the console core pushes rendered
// snapshots and viewport requests in as messages, and the model never touches
// the document directly.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/tailpane/tailpane/internal/tui/styles"
)

// ContentMsg replaces the displayed document snapshot.
type ContentMsg struct {
	Content string
	Lines   int
	Dropped uint64
}

// ScrollToBottomMsg is the append-mode viewport request: make the newest
// output visible.
type ScrollToBottomMsg struct{}

// CaretToTopMsg is the insert-mode viewport request: show the document head,
// where the newest line was just inserted.
type CaretToTopMsg struct{}

// MaxLinesMsg updates the displayed line limit after a config reload.
type MaxLinesMsg struct {
	MaxLines int
}

// ProcessStartedMsg updates the status bar when the child starts.
type ProcessStartedMsg struct {
	PID     int
	Command string
}

// ProcessExitedMsg updates the status bar when the child exits.
type ProcessExitedMsg struct {
	Code int
}

// CaptureErrorMsg surfaces a stream read failure in the status bar.
type CaptureErrorMsg struct {
	Err error
}

const headerHeight = 2 // title line plus rule
const footerHeight = 1

// Model is the bubbletea model for the console pane.
type Model struct {
	palette  styles.Palette
	command  string
	mode     string
	maxLines int

	vp    viewport.Model
	ready bool

	lines   int
	dropped uint64
	pid     int
	running bool
	exited  bool
	code    int
	lastErr error

	// follow tracks whether the user has scrolled away from the bottom;
	// scroll requests are honored only while following.
	follow bool
}

// NewModel creates a model showing the given command in its title. mode and
// maxLines are display-only; zero maxLines means unlimited.
func NewModel(palette styles.Palette, command, mode string, maxLines int) Model {
	return Model{
		palette:  palette,
		command:  command,
		mode:     mode,
		maxLines: maxLines,
		follow:   true,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if !m.ready {
			m.vp = viewport.New(msg.Width, msg.Height-headerHeight-footerHeight)
			m.ready = true
		} else {
			m.vp.Width = msg.Width
			m.vp.Height = msg.Height - headerHeight - footerHeight
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "G", "end":
			m.follow = true
			m.vp.GotoBottom()
			return m, nil
		case "g", "home":
			m.follow = false
			m.vp.GotoTop()
			return m, nil
		}
		var cmd tea.Cmd
		m.vp, cmd = m.vp.Update(msg)
		// Manual scrolling away from the bottom pauses following.
		m.follow = m.vp.AtBottom()
		return m, cmd

	case ContentMsg:
		m.lines = msg.Lines
		m.dropped = msg.Dropped
		if m.ready {
			m.vp.SetContent(msg.Content)
			if m.follow {
				m.vp.GotoBottom()
			}
		}
		return m, nil

	case ScrollToBottomMsg:
		if m.ready && m.follow {
			m.vp.GotoBottom()
		}
		return m, nil

	case CaretToTopMsg:
		if m.ready {
			m.vp.GotoTop()
		}
		return m, nil

	case MaxLinesMsg:
		m.maxLines = msg.MaxLines
		return m, nil

	case ProcessStartedMsg:
		m.pid = msg.PID
		m.running = true
		return m, nil

	case ProcessExitedMsg:
		m.running = false
		m.exited = true
		m.code = msg.Code
		return m, nil

	case CaptureErrorMsg:
		m.lastErr = msg.Err
		return m, nil
	}

	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "starting..."
	}

	title := m.palette.Title.Render("tailpane") + " " + m.palette.Muted.Render(m.command)
	title = ansi.Truncate(title, max(m.vp.Width, 1), "...")
	rule := m.palette.Muted.Render(strings.Repeat("─", max(m.vp.Width, 1)))

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		rule,
		m.vp.View(),
		m.statusLine(),
	)
}

func (m Model) statusLine() string {
	style := m.palette.Status
	state := "running"
	switch {
	case m.exited && m.code != 0:
		style = m.palette.StatusError
		state = fmt.Sprintf("exit %d", m.code)
	case m.exited:
		state = "exit 0"
	case m.pid != 0:
		state = fmt.Sprintf("pid %d", m.pid)
	}

	status := fmt.Sprintf(" %s | %s", state, m.mode)
	if m.maxLines > 0 {
		status += fmt.Sprintf(" | %d/%d lines", m.lines, m.maxLines)
	} else {
		status += fmt.Sprintf(" | %d lines", m.lines)
	}
	if m.dropped > 0 {
		status += fmt.Sprintf(" | %d dropped", m.dropped)
	}
	if m.lastErr != nil {
		status += fmt.Sprintf(" | read error: %v", m.lastErr)
	}
	if !m.follow {
		status += " | paused (G to follow)"
	}
	return style.Width(m.vp.Width).Render(status)
}
