package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

func newRenderer(width int) *glamour.TermRenderer {
	if width < 20 {
		width = 20
	}
	r, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	return r
}

// renderMarkdown falls back to the raw text when rendering fails.
func renderMarkdown(r *glamour.TermRenderer, content string) string {
	if r == nil {
		return content
	}
	out, err := r.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(out, "\n")
}
