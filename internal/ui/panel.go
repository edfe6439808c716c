package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ProgressBar renders a Unicode progress bar with percentage.
// An empty list (total <= 0) renders as an empty bar at 0%.
func ProgressBar(done, total, width int) string {
	if width < 5 {
		width = 5
	}
	filled, pct := 0, 0
	if total > 0 {
		filled = int(float64(done) / float64(total) * float64(width))
		pct = int(float64(done) / float64(total) * 100)
	}
	if filled > width {
		filled = width
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("%s %3d%%", bar, pct)
}

// Panel draws a framed box using the current theme. Widths are measured in
// terminal cells so CJK text and color codes line up.
func Panel(w io.Writer, lines []string) {
	t := Current()
	maxw := 0
	for _, ln := range lines {
		if lw := lipgloss.Width(ln); lw > maxw {
			maxw = lw
		}
	}
	pad := func(s string) string {
		if vis := lipgloss.Width(s); vis < maxw {
			s += strings.Repeat(" ", maxw-vis)
		}
		return s
	}
	fmt.Fprintln(w, t.CornerTL+strings.Repeat(t.H, maxw+2)+t.CornerTR)
	for _, ln := range lines {
		fmt.Fprintln(w, t.V+" "+pad(ln)+" "+t.V)
	}
	fmt.Fprintln(w, t.CornerBL+strings.Repeat(t.H, maxw+2)+t.CornerBR)
}
