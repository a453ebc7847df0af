package domain

import "strings"

// Board maps every column id to its ordered tasks.
type Board struct {
	Columns [ColumnCount]Column
}

// NewBoard returns a board with three empty columns.
func NewBoard() Board {
	var b Board
	for idx := range b.Columns {
		b.Columns[idx] = Column{}
	}
	return b
}

// Clone returns a deep copy that shares no slices with b.
func (b Board) Clone() Board {
	var out Board
	for idx, col := range b.Columns {
		out.Columns[idx] = col.clone()
	}
	return out
}

// Column returns the tasks in one column. Unknown ids yield nil.
func (b Board) Column(id ColumnID) Column {
	if !id.Valid() {
		return nil
	}
	return b.Columns[id]
}

// Len returns the total number of tasks across all columns.
func (b Board) Len() int {
	total := 0
	for _, col := range b.Columns {
		total += len(col)
	}
	return total
}

// Find returns the task with taskID inside one column.
func (b Board) Find(columnID ColumnID, taskID string) (Task, bool) {
	if !columnID.Valid() {
		return Task{}, false
	}
	idx := b.Columns[columnID].IndexOf(taskID)
	if idx < 0 {
		return Task{}, false
	}
	return b.Columns[columnID][idx], true
}

// Locate searches every column for taskID.
func (b Board) Locate(taskID string) (Location, bool) {
	for _, columnID := range Columns() {
		if idx := b.Columns[columnID].IndexOf(taskID); idx >= 0 {
			return Location{Column: columnID, Index: idx}, true
		}
	}
	return Location{}, false
}

// Append adds a task to the end of a column.
func (b *Board) Append(columnID ColumnID, task Task) error {
	if !columnID.Valid() {
		return ErrInvalidColumnID
	}
	if strings.TrimSpace(task.ID) == "" {
		return ErrInvalidID
	}
	b.Columns[columnID] = append(b.Columns[columnID].clone(), task)
	return nil
}

// Replace swaps the text of a task in one column.
func (b *Board) Replace(columnID ColumnID, taskID, text string) error {
	if !columnID.Valid() {
		return ErrInvalidColumnID
	}
	idx := b.Columns[columnID].IndexOf(taskID)
	if idx < 0 {
		return ErrTaskNotFound
	}
	col := b.Columns[columnID].clone()
	if err := col[idx].Rename(text); err != nil {
		return err
	}
	b.Columns[columnID] = col
	return nil
}

// Remove deletes a task from one column and reports whether it was present.
func (b *Board) Remove(columnID ColumnID, taskID string) bool {
	if !columnID.Valid() {
		return false
	}
	idx := b.Columns[columnID].IndexOf(taskID)
	if idx < 0 {
		return false
	}
	col := b.Columns[columnID].clone()
	b.Columns[columnID] = append(col[:idx], col[idx+1:]...)
	return true
}

// Equal reports whether both boards hold the same tasks in the same order.
func (b Board) Equal(other Board) bool {
	for idx := range b.Columns {
		left, right := b.Columns[idx], other.Columns[idx]
		if len(left) != len(right) {
			return false
		}
		for i := range left {
			if left[i] != right[i] {
				return false
			}
		}
	}
	return true
}

// Normalize drops tasks with blank ids and keeps only the first occurrence of
// each id, so the result satisfies the one-id-one-place invariant.
func (b Board) Normalize() Board {
	out := NewBoard()
	seen := map[string]struct{}{}
	for idx, col := range b.Columns {
		for _, task := range col {
			id := strings.TrimSpace(task.ID)
			if id == "" {
				continue
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			task.ID = id
			out.Columns[idx] = append(out.Columns[idx], task)
		}
	}
	return out
}

// Validate checks that every task id is non-blank and appears exactly once.
func (b Board) Validate() error {
	seen := map[string]struct{}{}
	for _, col := range b.Columns {
		for _, task := range col {
			if strings.TrimSpace(task.ID) == "" {
				return ErrInvalidID
			}
			if _, ok := seen[task.ID]; ok {
				return ErrInvalidID
			}
			seen[task.ID] = struct{}{}
		}
	}
	return nil
}
