package tui

import (
	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/hylla/tavla/internal/domain"
)

// boardTop is the screen row of the column top borders.
const boardTop = 2

// cardsTop is the offset from boardTop to the first card row: the top border,
// the column title and a blank line.
const cardsTop = 3

// dragState tracks one card being held.
type dragState struct {
	taskID string
	source domain.Location
	target domain.Location
	mouse  bool
}

func (d dragState) result() domain.DragResult {
	target := d.target
	return domain.DragResult{Source: d.source, Destination: &target}
}

// validFor reports whether the held card is still at its source location.
func (d dragState) validFor(board domain.Board) bool {
	col := board.Column(d.source.Column)
	return d.source.Index >= 0 && d.source.Index < len(col) && col[d.source.Index].ID == d.taskID
}

// maxTargetIndex is the largest destination index for the held card in a
// column: the last slot when reordering, one past the end when moving.
func (d dragState) maxTargetIndex(board domain.Board, columnID domain.ColumnID) int {
	n := len(board.Column(columnID))
	if columnID == d.source.Column {
		return max(0, n-1)
	}
	return n
}

// displayBoard is the board as rendered: the live board, or the would-be
// result of the held drag.
func (m Model) displayBoard() domain.Board {
	if m.drag == nil {
		return m.board
	}
	preview, _ := domain.ApplyDrag(m.board, m.drag.result())
	return preview
}

// startKeyboardDrag picks up the selected card.
func (m Model) startKeyboardDrag() (tea.Model, tea.Cmd) {
	task, ok := m.selectedTaskValue()
	if !ok {
		return m, nil
	}
	loc := domain.Location{Column: domain.ColumnID(m.selectedColumn), Index: m.selectedTask}
	m.drag = &dragState{taskID: task.ID, source: loc, target: loc}
	m.mode = modeDrag
	m.setStatus("moving " + truncate(firstLine(task.Text), 32))
	return m, nil
}

// handleDragKey moves the placeholder, drops or cancels.
func (m Model) handleDragKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if m.drag == nil {
		m.mode = modeNone
		return m, nil
	}
	drag := *m.drag
	switch {
	case key.Matches(msg, m.keys.cancel):
		return m.cancelDrag()
	case key.Matches(msg, m.keys.grab), key.Matches(msg, m.keys.drop):
		return m.dropDrag()
	case key.Matches(msg, m.keys.moveLeft):
		drag.target.Column = domain.ColumnID(clamp(int(drag.target.Column)-1, 0, domain.ColumnCount-1))
	case key.Matches(msg, m.keys.moveRight):
		drag.target.Column = domain.ColumnID(clamp(int(drag.target.Column)+1, 0, domain.ColumnCount-1))
	case key.Matches(msg, m.keys.moveUp):
		drag.target.Index--
	case key.Matches(msg, m.keys.moveDown):
		drag.target.Index++
	default:
		return m, nil
	}
	drag.target.Index = clamp(drag.target.Index, 0, drag.maxTargetIndex(m.board, drag.target.Column))
	m.drag = &drag
	return m, nil
}

// dropDrag commits the held card at its placeholder.
func (m Model) dropDrag() (tea.Model, tea.Cmd) {
	drag := *m.drag
	m.drag = nil
	m.mode = modeNone
	changed, err := m.svc.ApplyDrag(m.ctx, drag.result())
	m.refresh()
	m.focusTask(drag.taskID)
	switch {
	case err != nil:
		m.setWarning("save failed: " + err.Error())
	case changed:
		m.setStatus("moved to " + m.titles[drag.target.Column])
	case !drag.mouse:
		m.setStatus("drop: no change")
	}
	return m, nil
}

// cancelDrag releases the held card without a destination.
func (m Model) cancelDrag() (tea.Model, tea.Cmd) {
	drag := *m.drag
	m.drag = nil
	m.mode = modeNone
	m.focusTask(drag.taskID)
	m.setStatus("drag cancelled")
	return m, nil
}

// handleMouseClick selects the clicked card and picks it up.
func (m Model) handleMouseClick(msg tea.MouseClickMsg) (tea.Model, tea.Cmd) {
	if m.mode != modeNone || m.err != nil || msg.Button != tea.MouseLeft {
		return m, nil
	}
	columnID, slot, ok := m.hitTest(msg.X, msg.Y)
	if !ok {
		return m, nil
	}
	m.selectedColumn = int(columnID)
	col := m.board.Column(columnID)
	if slot < 0 || slot >= len(col) {
		m.clampSelection()
		return m, nil
	}
	m.selectedTask = slot
	loc := domain.Location{Column: columnID, Index: slot}
	m.drag = &dragState{taskID: col[slot].ID, source: loc, target: loc, mouse: true}
	m.mode = modeDrag
	return m, nil
}

// handleMouseMotion moves the placeholder under the pointer.
func (m Model) handleMouseMotion(msg tea.MouseMotionMsg) (tea.Model, tea.Cmd) {
	if m.drag == nil || !m.drag.mouse {
		return m, nil
	}
	columnID, slot, ok := m.hitTest(msg.X, msg.Y)
	if !ok {
		return m, nil
	}
	drag := *m.drag
	drag.target = domain.Location{
		Column: columnID,
		Index:  clamp(slot, 0, drag.maxTargetIndex(m.board, columnID)),
	}
	m.drag = &drag
	return m, nil
}

// handleMouseRelease drops the held card, or cancels when released outside
// every column.
func (m Model) handleMouseRelease(msg tea.MouseReleaseMsg) (tea.Model, tea.Cmd) {
	if m.drag == nil || !m.drag.mouse {
		return m, nil
	}
	columnID, slot, ok := m.hitTest(msg.X, msg.Y)
	if !ok {
		return m.cancelDrag()
	}
	drag := *m.drag
	drag.target = domain.Location{
		Column: columnID,
		Index:  clamp(slot, 0, drag.maxTargetIndex(m.board, columnID)),
	}
	m.drag = &drag
	return m.dropDrag()
}

// columnSpan is the rendered width of one column including its margin.
func (m Model) columnSpan() int {
	return lipgloss.Width(m.styles.column.Width(m.columnWidth()).Render(""))
}

// hitTest maps a screen cell to a column and a card slot in the displayed
// board. Slots above the first card map to 0; slots below the last map past
// the end.
func (m Model) hitTest(x, y int) (domain.ColumnID, int, bool) {
	span := m.columnSpan()
	if span <= 0 || x < 0 || x >= span*domain.ColumnCount {
		return 0, 0, false
	}
	bottom := boardTop + m.columnInnerHeight() + 2
	if y < boardTop || y >= bottom {
		return 0, 0, false
	}
	columnID := domain.ColumnID(x / span)
	count := len(m.displayBoard().Column(columnID))
	row := y - boardTop - cardsTop
	if row < 0 {
		return columnID, 0, true
	}
	return columnID, row + m.scrollOffset(columnID, count), true
}

// cardPosition returns the screen cell of a card slot, used by tests and
// mouse hit testing alike.
func (m Model) cardPosition(columnID domain.ColumnID, slot int) (int, int) {
	count := len(m.displayBoard().Column(columnID))
	x := int(columnID)*m.columnSpan() + 3
	y := boardTop + cardsTop + slot - m.scrollOffset(columnID, count)
	return x, y
}
