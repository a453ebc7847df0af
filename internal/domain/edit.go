package domain

// EditSession tracks the single card being edited and its scratch text.
type EditSession struct {
	Column ColumnID
	TaskID string
	Text   string
}
