package app

import "errors"

// ErrEmptyText and related errors describe validation and runtime failures.
var (
	ErrEmptyText     = errors.New("task text is empty")
	ErrNoEditSession = errors.New("no edit session")
)
