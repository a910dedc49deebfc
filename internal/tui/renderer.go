package tui

import (
	"strings"

	"github.com/tailpane/tailpane/internal/console"
)

// Render flattens styled document runs into a single ANSI string for the
// viewport. Styles are applied per line segment: a run may span line breaks,
// and styling each segment separately keeps lipgloss from treating the run as
// a block.
func Render(runs []console.Run) string {
	var b strings.Builder
	for _, r := range runs {
		if r.Style == nil {
			b.WriteString(r.Text)
			continue
		}
		for i, seg := range strings.Split(r.Text, "\n") {
			if i > 0 {
				b.WriteByte('\n')
			}
			if seg != "" {
				b.WriteString(r.Style.Render(seg))
			}
		}
	}
	return b.String()
}
