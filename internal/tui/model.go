package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/atotto/clipboard"
	"github.com/hylla/tavla/internal/app"
	"github.com/hylla/tavla/internal/domain"
)

// Service is the board store surface the model drives.
type Service interface {
	Load(context.Context) (app.LoadReport, error)
	Reload(context.Context) (app.LoadReport, error)
	Board() domain.Board
	Theme() domain.Theme
	AddTask(context.Context, string) (domain.Task, bool, error)
	DeleteTask(context.Context, domain.ColumnID, string) (bool, error)
	ApplyDrag(context.Context, domain.DragResult) (bool, error)
	BeginEdit(domain.ColumnID, string) (domain.EditSession, error)
	SetEditText(string) error
	SaveEdit(context.Context) (bool, error)
	EditSession() (domain.EditSession, bool)
	CancelEdit()
	ToggleTheme(context.Context) (domain.Theme, error)
}

// inputMode identifies which interaction currently owns the keyboard.
type inputMode int

const (
	modeNone inputMode = iota
	modeAdd
	modeEdit
	modeDrag
	modeInfo
	modeConfirmDelete
)

// ReloadMsg asks the model to re-read the board from storage.
type ReloadMsg struct{}

// loadedMsg carries message data through update handling.
type loadedMsg struct {
	board  domain.Board
	theme  domain.Theme
	report app.LoadReport
	err    error
}

// Model represents model data used by this package.
type Model struct {
	svc Service
	ctx context.Context

	ready  bool
	width  int
	height int
	err    error

	status     string
	statusWarn bool

	help   help.Model
	keys   keyMap
	styles styles
	md     *markdownRenderer

	board          domain.Board
	theme          domain.Theme
	titles         [domain.ColumnCount]string
	selectedColumn int
	selectedTask   int

	mode  inputMode
	input textinput.Model
	drag  *dragState

	infoTaskID     string
	deleteTaskID   string
	editingTaskID  string
	renderMarkdown bool
	confirmDelete  bool

	copyText func(string) error
	onLoad   func(app.LoadReport)
}

// NewModel constructs a new value for this package.
func NewModel(svc Service, opts ...Option) Model {
	h := help.New()
	h.ShowAll = false
	input := textinput.New()
	input.Prompt = "> "
	input.CharLimit = 500
	m := Model{
		svc:            svc,
		ctx:            context.Background(),
		status:         "loading...",
		help:           h,
		keys:           newKeyMap(),
		styles:         newStyles(domain.ThemeDark),
		md:             &markdownRenderer{},
		board:          domain.NewBoard(),
		theme:          domain.ThemeDark,
		input:          input,
		renderMarkdown: true,
		copyText:       clipboard.WriteAll,
	}
	for _, columnID := range domain.Columns() {
		m.titles[columnID] = columnID.Title()
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	return m
}

// Init handles init.
func (m Model) Init() tea.Cmd {
	return m.loadData
}

// Update updates state for the requested operation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		m.height = msg.Height
		m.input.SetWidth(max(10, m.width-8))
		return m, nil

	case loadedMsg:
		return m.applyLoaded(msg)

	case ReloadMsg:
		return m, m.reloadData

	case tea.KeyPressMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case modeAdd, modeEdit:
			return m.handleInputKey(msg)
		case modeDrag:
			return m.handleDragKey(msg)
		case modeInfo:
			return m.handleInfoKey(msg)
		case modeConfirmDelete:
			return m.handleConfirmKey(msg)
		default:
			return m.handleNormalModeKey(msg)
		}

	case tea.MouseWheelMsg:
		return m.handleMouseWheel(msg)

	case tea.MouseClickMsg:
		return m.handleMouseClick(msg)

	case tea.MouseMotionMsg:
		return m.handleMouseMotion(msg)

	case tea.MouseReleaseMsg:
		return m.handleMouseRelease(msg)

	default:
		return m, nil
	}
}

// loadData performs the initial load.
func (m Model) loadData() tea.Msg {
	report, err := m.svc.Load(m.ctx)
	return m.snapshot(report, err)
}

// reloadData re-reads storage after an external change.
func (m Model) reloadData() tea.Msg {
	report, err := m.svc.Reload(m.ctx)
	return m.snapshot(report, err)
}

func (m Model) snapshot(report app.LoadReport, err error) loadedMsg {
	if err != nil {
		return loadedMsg{err: err}
	}
	return loadedMsg{board: m.svc.Board(), theme: m.svc.Theme(), report: report}
}

// applyLoaded swaps in freshly loaded state and drops interactions whose task
// disappeared.
func (m Model) applyLoaded(msg loadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.err = msg.err
		return m, nil
	}
	m.err = nil
	if m.onLoad != nil {
		m.onLoad(msg.report)
	}
	m.board = msg.board
	m.setTheme(msg.theme)
	if m.status == "loading..." {
		m.setStatus("ready")
	}

	switch m.mode {
	case modeDrag:
		if m.drag == nil || !m.drag.validFor(m.board) {
			m.drag = nil
			m.mode = modeNone
			m.setWarning("drag cancelled: board changed")
		}
	case modeEdit:
		// the store drops the session once its task leaves the edited column
		if _, ok := m.svc.EditSession(); !ok {
			m.svc.CancelEdit()
			m.input.Blur()
			m.mode = modeNone
			m.setWarning("task was moved or removed while editing")
		}
	case modeInfo:
		if _, ok := m.board.Locate(m.infoTaskID); !ok {
			m.mode = modeNone
		}
	case modeConfirmDelete:
		if _, ok := m.board.Locate(m.deleteTaskID); !ok {
			m.mode = modeNone
		}
	}
	m.clampSelection()
	return m, nil
}

// handleNormalModeKey handles board navigation and commands.
func (m Model) handleNormalModeKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if m.err != nil {
		switch {
		case key.Matches(msg, m.keys.reload):
			m.err = nil
			return m, m.reloadData
		case key.Matches(msg, m.keys.quit):
			return m, tea.Quit
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.reload):
		m.setStatus("reloading...")
		return m, m.reloadData
	case key.Matches(msg, m.keys.moveLeft):
		m.selectedColumn = clamp(m.selectedColumn-1, 0, domain.ColumnCount-1)
		m.clampSelection()
		return m, nil
	case key.Matches(msg, m.keys.moveRight):
		m.selectedColumn = clamp(m.selectedColumn+1, 0, domain.ColumnCount-1)
		m.clampSelection()
		return m, nil
	case key.Matches(msg, m.keys.moveUp):
		m.selectedTask--
		m.clampSelection()
		return m, nil
	case key.Matches(msg, m.keys.moveDown):
		m.selectedTask++
		m.clampSelection()
		return m, nil
	case key.Matches(msg, m.keys.addTask):
		return m.startInput(modeAdd, "")
	case key.Matches(msg, m.keys.editTask):
		return m.startEdit()
	case key.Matches(msg, m.keys.deleteTask):
		task, ok := m.selectedTaskValue()
		if !ok {
			return m, nil
		}
		if m.confirmDelete {
			m.mode = modeConfirmDelete
			m.deleteTaskID = task.ID
			m.setStatus(fmt.Sprintf("delete %q? (y/n)", truncate(task.Text, 32)))
			return m, nil
		}
		return m.deleteTask(task.ID)
	case key.Matches(msg, m.keys.grab):
		return m.startKeyboardDrag()
	case key.Matches(msg, m.keys.taskInfo):
		task, ok := m.selectedTaskValue()
		if !ok {
			return m, nil
		}
		m.mode = modeInfo
		m.infoTaskID = task.ID
		return m, nil
	case key.Matches(msg, m.keys.toggleTheme):
		theme, err := m.svc.ToggleTheme(m.ctx)
		m.setTheme(theme)
		if err != nil {
			m.setWarning("save failed: " + err.Error())
			return m, nil
		}
		m.setStatus("theme: " + string(theme))
		return m, nil
	case key.Matches(msg, m.keys.copyTask):
		return m.copySelected()
	}
	return m, nil
}

// startInput opens the text input in add or edit mode.
func (m Model) startInput(mode inputMode, value string) (tea.Model, tea.Cmd) {
	m.mode = mode
	m.input.Reset()
	m.input.SetValue(value)
	m.input.CursorEnd()
	if mode == modeAdd {
		m.input.Placeholder = "new task"
		m.setStatus("new task in " + m.titles[domain.ColumnTodo])
	} else {
		m.input.Placeholder = "task text"
		m.setStatus("editing task")
	}
	_ = m.input.Focus()
	return m, nil
}

// startEdit opens an edit session for the selected task.
func (m Model) startEdit() (tea.Model, tea.Cmd) {
	task, ok := m.selectedTaskValue()
	if !ok {
		return m, nil
	}
	session, err := m.svc.BeginEdit(domain.ColumnID(m.selectedColumn), task.ID)
	if err != nil {
		m.setWarning(err.Error())
		return m, nil
	}
	m.editingTaskID = session.TaskID
	return m.startInput(modeEdit, session.Text)
}

// handleInputKey handles keys while the add or edit input is focused.
func (m Model) handleInputKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		if m.mode == modeEdit {
			m.svc.CancelEdit()
		}
		m.input.Blur()
		m.mode = modeNone
		m.setStatus("cancelled")
		return m, nil
	case "enter":
		if m.mode == modeAdd {
			return m.submitAdd()
		}
		return m.submitEdit()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.mode == modeEdit {
		if err := m.svc.SetEditText(m.input.Value()); err != nil {
			m.setWarning(err.Error())
		}
	}
	return m, cmd
}

func (m Model) submitAdd() (tea.Model, tea.Cmd) {
	task, added, err := m.svc.AddTask(m.ctx, m.input.Value())
	m.input.Blur()
	m.mode = modeNone
	m.refresh()
	if added {
		m.focusTask(task.ID)
	}
	switch {
	case err != nil:
		m.setWarning("save failed: " + err.Error())
	case !added:
		m.setStatus("empty task ignored")
	default:
		m.setStatus("added task")
	}
	return m, nil
}

func (m Model) submitEdit() (tea.Model, tea.Cmd) {
	if err := m.svc.SetEditText(m.input.Value()); err != nil {
		m.setWarning(err.Error())
		m.input.Blur()
		m.mode = modeNone
		return m, nil
	}
	changed, err := m.svc.SaveEdit(m.ctx)
	if errors.Is(err, app.ErrEmptyText) {
		m.setWarning("task text cannot be empty")
		return m, nil
	}
	m.input.Blur()
	m.mode = modeNone
	m.refresh()
	switch {
	case err != nil:
		m.setWarning("save failed: " + err.Error())
	case changed:
		m.setStatus("task updated")
	default:
		m.setStatus("no changes")
	}
	return m, nil
}

// handleInfoKey closes the task info overlay.
func (m Model) handleInfoKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.copyTask):
		return m.copySelected()
	case key.Matches(msg, m.keys.cancel), key.Matches(msg, m.keys.taskInfo), key.Matches(msg, m.keys.quit):
		m.mode = modeNone
		m.infoTaskID = ""
	}
	return m, nil
}

// handleConfirmKey resolves a pending delete confirmation.
func (m Model) handleConfirmKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "enter":
		taskID := m.deleteTaskID
		m.mode = modeNone
		m.deleteTaskID = ""
		return m.deleteTask(taskID)
	case "n", "esc":
		m.mode = modeNone
		m.deleteTaskID = ""
		m.setStatus("delete cancelled")
	}
	return m, nil
}

func (m Model) deleteTask(taskID string) (tea.Model, tea.Cmd) {
	loc, ok := m.board.Locate(taskID)
	if !ok {
		return m, nil
	}
	removed, err := m.svc.DeleteTask(m.ctx, loc.Column, taskID)
	m.refresh()
	switch {
	case err != nil:
		m.setWarning("save failed: " + err.Error())
	case removed:
		m.setStatus("deleted task")
	}
	return m, nil
}

func (m Model) copySelected() (tea.Model, tea.Cmd) {
	task, ok := m.selectedTaskValue()
	if m.mode == modeInfo {
		if loc, found := m.board.Locate(m.infoTaskID); found {
			task, ok = m.board.Columns[loc.Column][loc.Index], true
		}
	}
	if !ok {
		return m, nil
	}
	if err := m.copyText(task.Text); err != nil {
		m.setWarning("copy failed: " + err.Error())
		return m, nil
	}
	m.setStatus("copied task text")
	return m, nil
}

// handleMouseWheel moves the selection within the current column.
func (m Model) handleMouseWheel(msg tea.MouseWheelMsg) (tea.Model, tea.Cmd) {
	if m.mode != modeNone {
		return m, nil
	}
	switch msg.Button {
	case tea.MouseWheelUp:
		m.selectedTask--
	case tea.MouseWheelDown:
		m.selectedTask++
	}
	m.clampSelection()
	return m, nil
}

// refresh pulls the authoritative board from the store.
func (m *Model) refresh() {
	m.board = m.svc.Board()
	m.clampSelection()
}

func (m *Model) setTheme(theme domain.Theme) {
	if theme == "" {
		theme = domain.ThemeDark
	}
	m.theme = theme
	m.styles = newStyles(theme)
}

func (m *Model) setStatus(status string) {
	m.status = status
	m.statusWarn = false
}

func (m *Model) setWarning(status string) {
	m.status = status
	m.statusWarn = true
}

// focusTask selects the card with the given id, wherever it is.
func (m *Model) focusTask(taskID string) {
	if loc, ok := m.board.Locate(taskID); ok {
		m.selectedColumn = int(loc.Column)
		m.selectedTask = loc.Index
	}
	m.clampSelection()
}

// clampSelection clamps selections.
func (m *Model) clampSelection() {
	m.selectedColumn = clamp(m.selectedColumn, 0, domain.ColumnCount-1)
	n := len(m.board.Column(domain.ColumnID(m.selectedColumn)))
	m.selectedTask = clamp(m.selectedTask, 0, n-1)
}

func (m Model) selectedTaskValue() (domain.Task, bool) {
	col := m.board.Column(domain.ColumnID(m.selectedColumn))
	if m.selectedTask < 0 || m.selectedTask >= len(col) {
		return domain.Task{}, false
	}
	return col[m.selectedTask], true
}

// View handles view.
func (m Model) View() tea.View {
	var content string
	switch {
	case m.err != nil:
		content = "error: " + m.err.Error() + "\n\npress r to retry • q quit\n"
	case !m.ready:
		content = "loading..."
	default:
		content = m.renderBoardView()
	}
	v := tea.NewView(content)
	v.MouseMode = tea.MouseModeCellMotion
	v.AltScreen = true
	return v
}

func (m Model) renderBoardView() string {
	s := m.styles
	header := s.title.Render("tavla") + s.status.Render(fmt.Sprintf("  %d tasks  [%s]  theme: %s", m.board.Len(), m.modeLabel(), m.theme))

	body := m.renderColumns()
	switch m.mode {
	case modeInfo:
		body = lipgloss.Place(max(1, m.width), lipgloss.Height(body), lipgloss.Center, lipgloss.Center, m.renderInfo())
	case modeAdd, modeEdit:
		title := "New task"
		if m.mode == modeEdit {
			title = "Edit task"
		}
		box := s.overlay.Width(max(20, min(72, m.width-8))).Render(s.columnTitle.Render(title) + "\n\n" + s.input.Render(m.input.View()) + "\n\n" + s.status.Render("enter save • esc cancel"))
		body = lipgloss.Place(max(1, m.width), lipgloss.Height(body), lipgloss.Center, lipgloss.Center, box)
	}

	statusStyle := s.status
	if m.statusWarn {
		statusStyle = s.warning
	}
	status := ""
	if strings.TrimSpace(m.status) != "" && m.status != "ready" {
		status = statusStyle.Render(m.status)
	}

	helpBubble := m.help
	helpBubble.SetWidth(max(0, m.width-2))
	helpText := helpBubble.View(m.keys)
	if m.mode == modeDrag {
		helpText = helpBubble.ShortHelpView(m.keys.dragHelp())
	}
	helpLine := s.help.Width(max(0, m.width)).Render(helpText)

	content := strings.Join([]string{header, "", body, status}, "\n")
	if m.height > 0 {
		content = fitLines(content, max(0, m.height-lipgloss.Height(helpLine)))
	}
	return content + "\n" + helpLine
}

// renderColumns draws the three columns, showing a drag preview while a card
// is held.
func (m Model) renderColumns() string {
	s := m.styles
	board := m.displayBoard()
	colWidth := m.columnWidth()
	innerHeight := m.columnInnerHeight()
	window := m.cardWindow()

	draggedID := ""
	targetColumn := -1
	if m.drag != nil {
		draggedID = m.drag.taskID
		targetColumn = int(m.drag.target.Column)
	}

	views := make([]string, 0, domain.ColumnCount)
	for _, columnID := range domain.Columns() {
		col := board.Column(columnID)
		colIdx := int(columnID)
		lines := []string{s.columnTitle.Render(fmt.Sprintf("%s (%d)", m.titles[columnID], len(col))), ""}
		if len(col) == 0 {
			lines = append(lines, s.empty.Render("(empty)"))
		}
		offset := m.scrollOffset(columnID, len(col))
		for idx := offset; idx < len(col) && idx < offset+window; idx++ {
			task := col[idx]
			text := truncate(firstLine(task.Text), max(1, colWidth-6))
			switch {
			case task.ID == draggedID:
				lines = append(lines, s.cardDragged.Render("▌ "+text))
			case m.drag == nil && colIdx == m.selectedColumn && idx == m.selectedTask:
				lines = append(lines, s.cardSelected.Render("│ "+text))
			default:
				lines = append(lines, s.card.Render("  "+text))
			}
		}
		content := fitLines(strings.Join(lines, "\n"), innerHeight)

		style := s.column
		switch {
		case colIdx == targetColumn:
			style = s.columnTarget
		case m.drag == nil && colIdx == m.selectedColumn:
			style = s.columnSelected
		}
		views = append(views, style.Width(colWidth).Render(content))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, views...)
}

// renderInfo draws the task info overlay.
func (m Model) renderInfo() string {
	s := m.styles
	loc, ok := m.board.Locate(m.infoTaskID)
	if !ok {
		return ""
	}
	task := m.board.Columns[loc.Column][loc.Index]
	width := max(24, min(80, m.width-12))
	text := task.Text
	if m.renderMarkdown {
		text = m.md.render(task.Text, width, m.theme)
	}
	meta := s.status.Render(fmt.Sprintf("%s • #%d • id %s", m.titles[loc.Column], loc.Index+1, task.ID))
	footer := s.status.Render("esc close • " + m.keys.copyTask.Help().Key + " copy")
	return s.overlay.Width(width + 6).Render(s.columnTitle.Render("Task") + "\n" + meta + "\n\n" + text + "\n\n" + footer)
}

func (m Model) modeLabel() string {
	switch m.mode {
	case modeAdd:
		return "add"
	case modeEdit:
		return "edit"
	case modeDrag:
		return "drag"
	case modeInfo:
		return "info"
	case modeConfirmDelete:
		return "confirm"
	default:
		return "board"
	}
}

// columnWidth returns the content width of one column.
func (m Model) columnWidth() int {
	w := 28
	if m.width > 0 {
		// border (2), horizontal padding (2), margin-right (1)
		const colOverhead = 5
		if candidate := (m.width - domain.ColumnCount*colOverhead) / domain.ColumnCount; candidate > 0 {
			w = candidate
		}
	}
	return clamp(w, 16, 48)
}

// columnInnerHeight returns the number of content lines inside a column box.
func (m Model) columnInnerHeight() int {
	// header, blank, column borders, status, help border and text
	const chrome = 7
	if m.height <= 0 {
		return 12
	}
	return max(4, m.height-chrome)
}

// cardWindow returns how many cards fit under a column title.
func (m Model) cardWindow() int {
	return max(1, m.columnInnerHeight()-2)
}

// scrollOffset keeps the focused card of a column inside the window.
func (m Model) scrollOffset(columnID domain.ColumnID, count int) int {
	focus := -1
	switch {
	case m.drag != nil && m.drag.target.Column == columnID:
		focus = m.drag.target.Index
	case m.drag == nil && int(columnID) == m.selectedColumn:
		focus = m.selectedTask
	}
	window := m.cardWindow()
	if focus < window {
		return 0
	}
	return clamp(focus-window+1, 0, max(0, count-window))
}

// firstLine returns the first non-blank line of multi-line text.
func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			return strings.TrimSpace(line)
		}
	}
	return ""
}

// clamp clamps the requested operation.
func clamp(v, minV, maxV int) int {
	if maxV < minV {
		return minV
	}
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

// fitLines fits lines.
func fitLines(content string, maxLines int) string {
	if maxLines <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	switch {
	case len(lines) > maxLines:
		if maxLines == 1 {
			lines = []string{"…"}
		} else {
			lines = append(lines[:maxLines-1], "…")
		}
	case len(lines) < maxLines:
		padding := make([]string, maxLines-len(lines))
		lines = append(lines, padding...)
	}
	return strings.Join(lines, "\n")
}

// truncate truncates the requested operation.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= max {
		return s
	}
	if max <= 1 {
		return string(rs[:max])
	}
	return string(rs[:max-1]) + "…"
}
