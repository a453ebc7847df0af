package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/hylla/tavla/internal/domain"
)

// markdownRenderer renders task text as markdown and recreates the glamour
// renderer when the wrap width or theme changes.
type markdownRenderer struct {
	width    int
	theme    domain.Theme
	renderer *glamour.TermRenderer
}

// render converts markdown into ANSI-styled terminal text. On any renderer
// failure the input is returned unchanged.
func (r *markdownRenderer) render(markdown string, width int, theme domain.Theme) string {
	markdown = strings.TrimSpace(markdown)
	if markdown == "" {
		return ""
	}

	wrapWidth := max(width, 24)
	if r.renderer == nil || r.width != wrapWidth || r.theme != theme {
		style := "dark"
		if theme == domain.ThemeLight {
			style = "light"
		}
		renderer, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(wrapWidth),
		)
		if err != nil {
			return markdown
		}
		r.renderer = renderer
		r.width = wrapWidth
		r.theme = theme
	}

	rendered, err := r.renderer.Render(markdown)
	if err != nil {
		return markdown
	}
	return strings.Trim(rendered, "\n")
}
