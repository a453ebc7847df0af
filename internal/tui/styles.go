package tui

import (
	"image/color"

	"charm.land/lipgloss/v2"
	"github.com/hylla/tavla/internal/domain"
)

// palette holds the colors for one theme.
type palette struct {
	accent   color.Color
	text     color.Color
	muted    color.Color
	dim      color.Color
	selected color.Color
	dragged  color.Color
	warning  color.Color
}

func paletteFor(theme domain.Theme) palette {
	if theme == domain.ThemeLight {
		return palette{
			accent:   lipgloss.Color("25"),
			text:     lipgloss.Color("235"),
			muted:    lipgloss.Color("244"),
			dim:      lipgloss.Color("250"),
			selected: lipgloss.Color("161"),
			dragged:  lipgloss.Color("130"),
			warning:  lipgloss.Color("160"),
		}
	}
	return palette{
		accent:   lipgloss.Color("62"),
		text:     lipgloss.Color("252"),
		muted:    lipgloss.Color("241"),
		dim:      lipgloss.Color("239"),
		selected: lipgloss.Color("212"),
		dragged:  lipgloss.Color("214"),
		warning:  lipgloss.Color("203"),
	}
}

// styles groups every lipgloss style the board view uses.
type styles struct {
	palette palette

	title          lipgloss.Style
	status         lipgloss.Style
	warning        lipgloss.Style
	help           lipgloss.Style
	column         lipgloss.Style
	columnSelected lipgloss.Style
	columnTarget   lipgloss.Style
	columnTitle    lipgloss.Style
	card           lipgloss.Style
	cardSelected   lipgloss.Style
	cardDragged    lipgloss.Style
	empty          lipgloss.Style
	overlay        lipgloss.Style
	input          lipgloss.Style
}

func newStyles(theme domain.Theme) styles {
	p := paletteFor(theme)
	column := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.dim).
		Padding(0, 1).
		MarginRight(1)
	return styles{
		palette:        p,
		title:          lipgloss.NewStyle().Bold(true).Foreground(p.text),
		status:         lipgloss.NewStyle().Foreground(p.muted),
		warning:        lipgloss.NewStyle().Bold(true).Foreground(p.warning),
		help:           lipgloss.NewStyle().Foreground(p.muted).BorderTop(true).BorderForeground(p.dim).Padding(0, 1),
		column:         column,
		columnSelected: column.BorderForeground(p.accent),
		columnTarget:   column.BorderForeground(p.dragged),
		columnTitle:    lipgloss.NewStyle().Bold(true).Foreground(p.accent),
		card:           lipgloss.NewStyle().Foreground(p.text),
		cardSelected:   lipgloss.NewStyle().Bold(true).Foreground(p.selected),
		cardDragged:    lipgloss.NewStyle().Bold(true).Foreground(p.dragged),
		empty:          lipgloss.NewStyle().Foreground(p.muted).Italic(true),
		overlay:        lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(p.accent).Padding(1, 2),
		input:          lipgloss.NewStyle().Foreground(p.accent),
	}
}
