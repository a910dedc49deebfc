// Package styles defines the lipgloss palette for the tailpane display and
// loads optional YAML theme overrides.
package styles

import "github.com/charmbracelet/lipgloss"

// Palette holds every style the display uses. Stream styles are the visual
// identity attached to document runs; the rest are chrome.
type Palette struct {
	// Stdout styles text captured from the child's standard output. The
	// zero style leaves the terminal default in place.
	Stdout lipgloss.Style
	// Stderr styles text captured from the child's standard error.
	Stderr lipgloss.Style

	// Title styles the header line.
	Title lipgloss.Style
	// Status styles the status bar.
	Status lipgloss.Style
	// StatusError styles the status bar after a failure exit.
	StatusError lipgloss.Style
	// Muted styles secondary status text.
	Muted lipgloss.Style
}

// DefaultPalette returns the built-in color scheme.
func DefaultPalette() Palette {
	return Palette{
		Stdout:      lipgloss.NewStyle(),
		Stderr:      lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		Title:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6")),
		Status:      lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("7")),
		StatusError: lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("1")),
		Muted:       lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// WithStreamColors returns a copy of the palette with the stream foreground
// colors replaced. Empty values keep the existing style.
func (p Palette) WithStreamColors(stdout, stderr string) Palette {
	if stdout != "" {
		p.Stdout = lipgloss.NewStyle().Foreground(lipgloss.Color(stdout))
	}
	if stderr != "" {
		p.Stderr = lipgloss.NewStyle().Foreground(lipgloss.Color(stderr))
	}
	return p
}
