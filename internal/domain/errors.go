package domain

import "errors"

var (
	ErrInvalidID       = errors.New("invalid id")
	ErrInvalidText     = errors.New("invalid text")
	ErrInvalidColumnID = errors.New("invalid column id")
	ErrInvalidTheme    = errors.New("invalid theme")
	ErrTaskNotFound    = errors.New("task not found")
)
