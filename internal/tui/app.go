package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tailpane/tailpane/internal/console"
	"github.com/tailpane/tailpane/internal/event"
	"github.com/tailpane/tailpane/internal/tui/styles"
)

// App owns the bubbletea program and adapts it to the console's collaborator
// interfaces: it is the console's viewport and the bus's display subscriber.
type App struct {
	program *tea.Program
}

// NewApp builds the program in alt-screen mode.
func NewApp(palette styles.Palette, command, mode string, maxLines int) *App {
	return &App{
		program: tea.NewProgram(NewModel(palette, command, mode, maxLines), tea.WithAltScreen()),
	}
}

// Run blocks until the user quits.
func (a *App) Run() error {
	_, err := a.program.Run()
	return err
}

// Quit asks the program to exit.
func (a *App) Quit() {
	a.program.Send(tea.Quit())
}

// SendContent pushes a freshly rendered document snapshot.
func (a *App) SendContent(content string, lines int, dropped uint64) {
	a.program.Send(ContentMsg{Content: content, Lines: lines, Dropped: dropped})
}

// SendMaxLines updates the status bar's line limit display.
func (a *App) SendMaxLines(maxLines int) {
	a.program.Send(MaxLinesMsg{MaxLines: maxLines})
}

// Viewport returns the console.Viewport implementation backed by this app.
// Both calls translate to program messages, so they are asynchronous and
// best-effort by construction.
func (a *App) Viewport() console.Viewport {
	return programViewport{program: a.program}
}

type programViewport struct {
	program *tea.Program
}

func (v programViewport) ScrollToBottom() {
	v.program.Send(ScrollToBottomMsg{})
}

func (v programViewport) SetCaretPosition(offset int) {
	// The pane has no caret; offset 0 means "show the head".
	if offset == 0 {
		v.program.Send(CaretToTopMsg{})
	}
}

// SubscribeEvents forwards process lifecycle events into the program.
func (a *App) SubscribeEvents(bus *event.Bus) {
	bus.Subscribe(event.TypeProcessStarted, func(ev event.Event) {
		started := ev.(event.ProcessStartedEvent)
		a.program.Send(ProcessStartedMsg{PID: started.PID, Command: started.Command})
	})
	bus.Subscribe(event.TypeProcessExited, func(ev event.Event) {
		a.program.Send(ProcessExitedMsg{Code: ev.(event.ProcessExitedEvent).Code})
	})
	bus.Subscribe(event.TypeCaptureError, func(ev event.Event) {
		a.program.Send(CaptureErrorMsg{Err: ev.(event.CaptureErrorEvent).Err})
	})
}
