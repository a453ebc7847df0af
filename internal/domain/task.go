package domain

import "strings"

// Task is a single card on the board.
type Task struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// NewTask validates and constructs a task.
func NewTask(id, text string) (Task, error) {
	id = strings.TrimSpace(id)
	text = NormalizeText(text)
	if id == "" {
		return Task{}, ErrInvalidID
	}
	if strings.TrimSpace(text) == "" {
		return Task{}, ErrInvalidText
	}
	return Task{ID: id, Text: text}, nil
}

// Rename replaces the task text wholesale.
func (t *Task) Rename(text string) error {
	text = NormalizeText(text)
	if strings.TrimSpace(text) == "" {
		return ErrInvalidText
	}
	t.Text = text
	return nil
}

// NormalizeText replaces invalid UTF-8 with U+FFFD, so stored text survives a
// JSON round trip unchanged. Whitespace is kept as typed.
func NormalizeText(text string) string {
	return strings.ToValidUTF8(text, "\uFFFD")
}
