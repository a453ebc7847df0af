package domain

import (
	"fmt"
	"strings"
)

// ColumnID identifies one of the three fixed board columns.
type ColumnID int

// ColumnTodo and related constants enumerate every board column in display order.
const (
	ColumnTodo ColumnID = iota
	ColumnInProgress
	ColumnDone
)

// ColumnCount is the number of board columns.
const ColumnCount = 3

// columnKeys holds the persisted identifier for each column.
var columnKeys = [ColumnCount]string{"todo", "inProgress", "done"}

// columnTitles holds the default display title for each column.
var columnTitles = [ColumnCount]string{"To Do", "In Progress", "Done"}

// Columns returns every column id in display order.
func Columns() []ColumnID {
	return []ColumnID{ColumnTodo, ColumnInProgress, ColumnDone}
}

// Valid reports whether the id names a known column.
func (c ColumnID) Valid() bool {
	return c >= 0 && int(c) < ColumnCount
}

// Key returns the persisted identifier, e.g. "inProgress".
func (c ColumnID) Key() string {
	if !c.Valid() {
		return ""
	}
	return columnKeys[c]
}

// Title returns the default display title.
func (c ColumnID) Title() string {
	if !c.Valid() {
		return ""
	}
	return columnTitles[c]
}

// String implements fmt.Stringer.
func (c ColumnID) String() string {
	if !c.Valid() {
		return fmt.Sprintf("ColumnID(%d)", int(c))
	}
	return columnKeys[c]
}

// ParseColumnID resolves a persisted identifier or a loose CLI spelling.
func ParseColumnID(raw string) (ColumnID, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	normalized = strings.NewReplacer("-", "", "_", "", " ", "").Replace(normalized)
	switch normalized {
	case "todo":
		return ColumnTodo, nil
	case "inprogress", "progress", "doing":
		return ColumnInProgress, nil
	case "done":
		return ColumnDone, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidColumnID, raw)
	}
}

// MarshalText encodes the column as its persisted identifier.
func (c ColumnID) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, ErrInvalidColumnID
	}
	return []byte(columnKeys[c]), nil
}

// UnmarshalText decodes a persisted identifier.
func (c *ColumnID) UnmarshalText(text []byte) error {
	id, err := ParseColumnID(string(text))
	if err != nil {
		return err
	}
	*c = id
	return nil
}

// Column is an ordered sequence of tasks.
type Column []Task

// IndexOf returns the position of the task id, or -1.
func (c Column) IndexOf(taskID string) int {
	for idx, task := range c {
		if task.ID == taskID {
			return idx
		}
	}
	return -1
}

// clone returns an independent copy.
func (c Column) clone() Column {
	if c == nil {
		return Column{}
	}
	out := make(Column, len(c))
	copy(out, c)
	return out
}
