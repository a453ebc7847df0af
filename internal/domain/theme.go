package domain

import (
	"fmt"
	"strings"
)

// Theme selects the board palette.
type Theme string

// ThemeDark and related constants enumerate supported palettes.
const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// ParseTheme validates a persisted or user-supplied theme name.
func ParseTheme(raw string) (Theme, error) {
	switch theme := Theme(strings.ToLower(strings.TrimSpace(raw))); theme {
	case ThemeDark, ThemeLight:
		return theme, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidTheme, raw)
	}
}

// Toggle returns the other palette.
func (t Theme) Toggle() Theme {
	if t == ThemeLight {
		return ThemeDark
	}
	return ThemeLight
}
