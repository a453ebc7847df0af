package app

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/hylla/tavla/internal/domain"
)

// EncodeBoard serializes a board as {"todo":[…],"inProgress":[…],"done":[…]}.
func EncodeBoard(board domain.Board) ([]byte, error) {
	payload := make(map[domain.ColumnID]domain.Column, domain.ColumnCount)
	for _, columnID := range domain.Columns() {
		col := board.Column(columnID)
		if col == nil {
			col = domain.Column{}
		}
		payload[columnID] = col
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode board json: %w", err)
	}
	return encoded, nil
}

// DecodeBoard parses persisted board JSON. It never fails: anything that is
// not a JSON object yields an empty board, each column that is not a task list
// (or a {"name","items"} wrapper around one) becomes empty, and malformed
// items are skipped. The second result reports whether any part of the input
// had to be discarded.
func DecodeBoard(raw []byte) (domain.Board, bool) {
	board := domain.NewBoard()
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return board, false
	}

	var columns map[string]json.RawMessage
	if err := json.Unmarshal(raw, &columns); err != nil || columns == nil {
		return board, true
	}

	lossy := false
	for _, columnID := range domain.Columns() {
		value, ok := columns[columnID.Key()]
		if !ok {
			lossy = true
			continue
		}
		col, clean := decodeColumn(value)
		board.Columns[columnID] = col
		if !clean {
			lossy = true
		}
	}

	normalized := board.Normalize()
	if normalized.Len() != board.Len() {
		lossy = true
	}
	return normalized, lossy
}

// decodeColumn accepts a bare task array or a {"name","items"} wrapper.
func decodeColumn(raw json.RawMessage) (domain.Column, bool) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		var wrapped struct {
			Name  string            `json:"name"`
			Items []json.RawMessage `json:"items"`
		}
		if err := json.Unmarshal(raw, &wrapped); err != nil || wrapped.Items == nil {
			return domain.Column{}, false
		}
		items = wrapped.Items
	}
	if items == nil {
		return domain.Column{}, false
	}

	clean := true
	col := make(domain.Column, 0, len(items))
	for _, item := range items {
		task, ok := decodeTask(item)
		if !ok {
			clean = false
			continue
		}
		col = append(col, task)
	}
	return col, clean
}

// decodeTask requires a string id and a string text field.
func decodeTask(raw json.RawMessage) (domain.Task, bool) {
	var fields struct {
		ID   *string `json:"id"`
		Text *string `json:"text"`
	}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return domain.Task{}, false
	}
	if fields.ID == nil || fields.Text == nil || *fields.ID == "" {
		return domain.Task{}, false
	}
	return domain.Task{ID: *fields.ID, Text: *fields.Text}, true
}
