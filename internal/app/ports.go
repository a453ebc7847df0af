package app

import "context"

// Storage keys used for persisted board state.
const (
	BoardKey = "tasks"
	ThemeKey = "theme"
)

// Storage is a string key-value store that survives restarts.
type Storage interface {
	Get(context.Context, string) (string, bool, error)
	Set(context.Context, string, string) error
}
