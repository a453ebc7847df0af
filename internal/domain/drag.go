package domain

// Location addresses one slot in a column.
type Location struct {
	Column ColumnID
	Index  int
}

// DragResult describes a finished drag gesture. A nil Destination means the
// card was dropped outside every column.
type DragResult struct {
	Source      Location
	Destination *Location
}

// Cancelled reports whether the drag ended without a drop target.
func (r DragResult) Cancelled() bool {
	return r.Destination == nil
}

// ApplyDrag removes the dragged task from its source slot and inserts it at
// the destination slot. For a same-column drag the destination index refers
// to the column after removal. Destination indexes past either end are
// clamped. The input board is never modified; changed is false when the
// returned board equals the input.
func ApplyDrag(b Board, r DragResult) (Board, bool) {
	out := b.Clone()
	if r.Destination == nil {
		return out, false
	}
	src, dst := r.Source, *r.Destination
	if !src.Column.Valid() || !dst.Column.Valid() {
		return out, false
	}
	source := out.Columns[src.Column]
	if src.Index < 0 || src.Index >= len(source) {
		return out, false
	}

	moved := source[src.Index]
	source = append(source[:src.Index], source[src.Index+1:]...)
	if src.Column == dst.Column {
		out.Columns[src.Column] = insertAt(source, dst.Index, moved)
	} else {
		out.Columns[src.Column] = source
		out.Columns[dst.Column] = insertAt(out.Columns[dst.Column], dst.Index, moved)
	}
	return out, !out.Equal(b)
}

// insertAt splices task into col at index, clamping index into [0, len(col)].
func insertAt(col Column, index int, task Task) Column {
	index = min(max(index, 0), len(col))
	out := make(Column, 0, len(col)+1)
	out = append(out, col[:index]...)
	out = append(out, task)
	return append(out, col[index:]...)
}
