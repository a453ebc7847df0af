package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/hylla/tavla/internal/domain"
)

// EmptyTextPolicy controls how an edit with blank text is handled.
type EmptyTextPolicy string

// EmptyTextReject and related constants define supported policies.
const (
	EmptyTextReject EmptyTextPolicy = "reject"
	EmptyTextIgnore EmptyTextPolicy = "ignore"
)

// StoreConfig holds configuration for the board store.
type StoreConfig struct {
	DefaultTheme domain.Theme
	EmptyText    EmptyTextPolicy
}

// IDGenerator returns unique identifiers for new tasks.
type IDGenerator func() string

// LoadReport describes what Load found in storage.
type LoadReport struct {
	BoardFound    bool
	BoardRepaired bool
	ThemeFound    bool
	ThemeInvalid  bool
}

// Store owns the board, the active edit session and the theme flag, and
// writes the board back to storage after every change.
type Store struct {
	mu        sync.Mutex
	storage   Storage
	idGen     IDGenerator
	emptyText EmptyTextPolicy
	defTheme  domain.Theme

	board domain.Board
	edit  *domain.EditSession
	theme domain.Theme
}

// NewStore constructs a store with an empty board. Call Load to read storage.
func NewStore(storage Storage, idGen IDGenerator, cfg StoreConfig) *Store {
	if idGen == nil {
		idGen = func() string { return "" }
	}
	if cfg.EmptyText != EmptyTextIgnore {
		cfg.EmptyText = EmptyTextReject
	}
	if _, err := domain.ParseTheme(string(cfg.DefaultTheme)); err != nil {
		cfg.DefaultTheme = domain.ThemeDark
	}
	return &Store{
		storage:   storage,
		idGen:     idGen,
		emptyText: cfg.EmptyText,
		defTheme:  cfg.DefaultTheme,
		board:     domain.NewBoard(),
		theme:     cfg.DefaultTheme,
	}
}

// Load replaces in-memory state with whatever storage holds. Missing or
// malformed values fall back to defaults; only storage read failures error.
func (s *Store) Load(ctx context.Context) (LoadReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(ctx)
}

// Reload re-reads storage and drops an edit session whose task disappeared.
func (s *Store) Reload(ctx context.Context) (LoadReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	report, err := s.loadLocked(ctx)
	if err != nil {
		return report, err
	}
	if s.edit != nil {
		if _, ok := s.board.Find(s.edit.Column, s.edit.TaskID); !ok {
			s.edit = nil
		}
	}
	return report, nil
}

func (s *Store) loadLocked(ctx context.Context) (LoadReport, error) {
	var report LoadReport
	rawBoard, ok, err := s.storage.Get(ctx, BoardKey)
	if err != nil {
		return report, fmt.Errorf("read board: %w", err)
	}
	board := domain.NewBoard()
	if ok {
		report.BoardFound = true
		board, report.BoardRepaired = DecodeBoard([]byte(rawBoard))
	}

	rawTheme, ok, err := s.storage.Get(ctx, ThemeKey)
	if err != nil {
		return report, fmt.Errorf("read theme: %w", err)
	}
	theme := s.defTheme
	if ok {
		report.ThemeFound = true
		parsed, parseErr := domain.ParseTheme(rawTheme)
		if parseErr != nil {
			report.ThemeInvalid = true
		} else {
			theme = parsed
		}
	}

	s.board = board
	s.theme = theme
	return report, nil
}

// Board returns a copy of the current board.
func (s *Store) Board() domain.Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.Clone()
}

// Theme returns the active theme.
func (s *Store) Theme() domain.Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.theme
}

// AddTask appends a new task to the todo column. Blank text is ignored and
// reported as added=false.
func (s *Store) AddTask(ctx context.Context, text string) (domain.Task, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if strings.TrimSpace(text) == "" {
		return domain.Task{}, false, nil
	}
	task, err := domain.NewTask(s.idGen(), text)
	if err != nil {
		return domain.Task{}, false, err
	}
	next := s.board.Clone()
	if err := next.Append(domain.ColumnTodo, task); err != nil {
		return domain.Task{}, false, err
	}
	return task, true, s.commitLocked(ctx, next)
}

// EditTask replaces the text of a task in one column. A missing task is a
// no-op. Blank text follows the configured policy.
func (s *Store) EditTask(ctx context.Context, columnID domain.ColumnID, taskID, text string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editLocked(ctx, columnID, taskID, text)
}

func (s *Store) editLocked(ctx context.Context, columnID domain.ColumnID, taskID, text string) (bool, error) {
	if !columnID.Valid() {
		return false, domain.ErrInvalidColumnID
	}
	current, ok := s.board.Find(columnID, taskID)
	if !ok {
		return false, nil
	}
	if strings.TrimSpace(text) == "" {
		if s.emptyText == EmptyTextReject {
			return false, ErrEmptyText
		}
		return false, nil
	}
	if current.Text == domain.NormalizeText(text) {
		return false, nil
	}
	next := s.board.Clone()
	if err := next.Replace(columnID, taskID, text); err != nil {
		return false, err
	}
	return true, s.commitLocked(ctx, next)
}

// DeleteTask removes a task from one column. A missing task is a no-op.
func (s *Store) DeleteTask(ctx context.Context, columnID domain.ColumnID, taskID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !columnID.Valid() {
		return false, domain.ErrInvalidColumnID
	}
	next := s.board.Clone()
	if !next.Remove(columnID, taskID) {
		return false, nil
	}
	if s.edit != nil && s.edit.TaskID == taskID {
		s.edit = nil
	}
	return true, s.commitLocked(ctx, next)
}

// ApplyDrag commits the result of a drag gesture. Cancelled or invalid drags
// leave the board untouched.
func (s *Store) ApplyDrag(ctx context.Context, result domain.DragResult) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, changed := domain.ApplyDrag(s.board, result)
	if !changed {
		return false, nil
	}
	if s.edit != nil {
		if loc, ok := next.Locate(s.edit.TaskID); ok {
			s.edit.Column = loc.Column
		}
	}
	return true, s.commitLocked(ctx, next)
}

// ReplaceBoard normalizes and persists a whole board, e.g. from an import.
func (s *Store) ReplaceBoard(ctx context.Context, board domain.Board) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.edit = nil
	return s.commitLocked(ctx, board.Normalize())
}

// BeginEdit opens an edit session seeded with the task's current text,
// replacing any previous session.
func (s *Store) BeginEdit(columnID domain.ColumnID, taskID string) (domain.EditSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.board.Find(columnID, taskID)
	if !ok {
		return domain.EditSession{}, domain.ErrTaskNotFound
	}
	s.edit = &domain.EditSession{Column: columnID, TaskID: taskID, Text: task.Text}
	return *s.edit, nil
}

// SetEditText updates the scratch text of the active session.
func (s *Store) SetEditText(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.edit == nil {
		return ErrNoEditSession
	}
	s.edit.Text = text
	return nil
}

// EditSession returns the active edit session, if any.
func (s *Store) EditSession() (domain.EditSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.edit == nil {
		return domain.EditSession{}, false
	}
	return *s.edit, true
}

// SaveEdit applies the session text. Under the reject policy a blank text
// returns ErrEmptyText and keeps the session open; otherwise the session
// closes.
func (s *Store) SaveEdit(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.edit == nil {
		return false, ErrNoEditSession
	}
	session := *s.edit
	changed, err := s.editLocked(ctx, session.Column, session.TaskID, session.Text)
	if errors.Is(err, ErrEmptyText) {
		return false, err
	}
	s.edit = nil
	return changed, err
}

// CancelEdit discards the active session.
func (s *Store) CancelEdit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.edit = nil
}

// SetTheme switches palettes and persists the choice.
func (s *Store) SetTheme(ctx context.Context, theme domain.Theme) error {
	parsed, err := domain.ParseTheme(string(theme))
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if parsed == s.theme {
		return nil
	}
	s.theme = parsed
	return s.persistThemeLocked(ctx)
}

// ToggleTheme flips between dark and light and returns the new theme.
func (s *Store) ToggleTheme(ctx context.Context) (domain.Theme, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.theme = s.theme.Toggle()
	return s.theme, s.persistThemeLocked(ctx)
}

// commitLocked swaps in the next board and writes board then theme. The
// in-memory board is kept even when the write fails.
func (s *Store) commitLocked(ctx context.Context, next domain.Board) error {
	s.board = next
	encoded, err := EncodeBoard(next)
	if err != nil {
		return err
	}
	if err := s.storage.Set(ctx, BoardKey, string(encoded)); err != nil {
		return fmt.Errorf("write board: %w", err)
	}
	return s.persistThemeLocked(ctx)
}

func (s *Store) persistThemeLocked(ctx context.Context) error {
	if err := s.storage.Set(ctx, ThemeKey, string(s.theme)); err != nil {
		return fmt.Errorf("write theme: %w", err)
	}
	return nil
}
