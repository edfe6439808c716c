package tui

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

// renderers caches one glamour renderer per wrap width.
var (
	renderersMu sync.Mutex
	renderers   = map[int]*glamour.TermRenderer{}
)

// renderMarkdown renders s for the terminal, falling back to the raw text
// when glamour cannot build a renderer.
func renderMarkdown(s string, width int) string {
	if width < 20 {
		width = 20
	}
	renderersMu.Lock()
	defer renderersMu.Unlock()
	r, ok := renderers[width]
	if !ok {
		var err error
		r, err = glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return s
		}
		renderers[width] = r
	}
	out, err := r.Render(s)
	if err != nil {
		return s
	}
	return strings.Trim(out, "\n")
}
