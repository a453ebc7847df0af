package app

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/hylla/tavla/internal/domain"
)

type fakeStorage struct {
	values map[string]string
	writes []string
	getErr error
	setErr error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{values: map[string]string{}}
}

func (f *fakeStorage) Get(_ context.Context, key string) (string, bool, error) {
	if f.getErr != nil {
		return "", false, f.getErr
	}
	v, ok := f.values[key]
	return v, ok, nil
}

func (f *fakeStorage) Set(_ context.Context, key, value string) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.values[key] = value
	f.writes = append(f.writes, key)
	return nil
}

func newTestStore(t *testing.T, storage *fakeStorage, cfg StoreConfig) *Store {
	t.Helper()
	counter := 0
	store := NewStore(storage, func() string {
		counter++
		return "id-" + strconv.Itoa(counter)
	}, cfg)
	if _, err := store.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return store
}

func TestStoreLoadDefaultsWhenStorageEmpty(t *testing.T) {
	store := newTestStore(t, newFakeStorage(), StoreConfig{DefaultTheme: domain.ThemeLight})
	board := store.Board()
	if board.Len() != 0 {
		t.Fatalf("expected empty board, got %d tasks", board.Len())
	}
	for _, columnID := range domain.Columns() {
		if board.Column(columnID) == nil {
			t.Fatalf("expected non-nil column %s", columnID)
		}
	}
	if store.Theme() != domain.ThemeLight {
		t.Fatalf("expected default theme light, got %q", store.Theme())
	}
}

func TestStoreLoadIsDefensivePerColumn(t *testing.T) {
	storage := newFakeStorage()
	storage.values[BoardKey] = `{"todo":[{"id":"1","text":"ok"}],"inProgress":"oops","done":[{"id":"2","text":"fine"}]}`
	storage.values[ThemeKey] = "sepia"
	store := NewStore(storage, nil, StoreConfig{})
	report, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !report.BoardFound || !report.BoardRepaired || !report.ThemeInvalid {
		t.Fatalf("unexpected report %#v", report)
	}
	board := store.Board()
	if len(board.Column(domain.ColumnTodo)) != 1 || len(board.Column(domain.ColumnDone)) != 1 {
		t.Fatalf("expected intact columns to load, got %#v", board)
	}
	if len(board.Column(domain.ColumnInProgress)) != 0 {
		t.Fatalf("expected malformed column to be empty, got %#v", board.Column(domain.ColumnInProgress))
	}
	if store.Theme() != domain.ThemeDark {
		t.Fatalf("expected fallback theme dark, got %q", store.Theme())
	}
	if len(storage.writes) != 0 {
		t.Fatalf("load should not write, got %v", storage.writes)
	}
}

func TestStoreLoadPropagatesStorageErrors(t *testing.T) {
	storage := newFakeStorage()
	storage.getErr = errors.New("disk gone")
	store := NewStore(storage, nil, StoreConfig{})
	if _, err := store.Load(context.Background()); err == nil {
		t.Fatal("expected load error")
	}
}

func TestStoreAddTask(t *testing.T) {
	storage := newFakeStorage()
	store := newTestStore(t, storage, StoreConfig{})
	ctx := context.Background()

	for _, blank := range []string{"", "   ", "\t\n"} {
		if _, added, err := store.AddTask(ctx, blank); err != nil || added {
			t.Fatalf("AddTask(%q) added=%t err=%v", blank, added, err)
		}
	}
	if store.Board().Len() != 0 || len(storage.writes) != 0 {
		t.Fatal("blank adds must not change or persist the board")
	}

	task, added, err := store.AddTask(ctx, "Buy milk")
	if err != nil || !added {
		t.Fatalf("AddTask() added=%t err=%v", added, err)
	}
	if task.Text != "Buy milk" || task.ID != "id-1" {
		t.Fatalf("unexpected task %#v", task)
	}
	if _, _, err := store.AddTask(ctx, "Walk dog"); err != nil {
		t.Fatalf("AddTask() error = %v", err)
	}
	todo := store.Board().Column(domain.ColumnTodo)
	if len(todo) != 2 || todo[0].Text != "Buy milk" || todo[1].Text != "Walk dog" {
		t.Fatalf("expected tasks appended in order, got %#v", todo)
	}
	if len(storage.writes) != 4 || storage.writes[0] != BoardKey || storage.writes[1] != ThemeKey {
		t.Fatalf("expected board then theme writes per mutation, got %v", storage.writes)
	}
}

func TestStoreEditTask(t *testing.T) {
	storage := newFakeStorage()
	store := newTestStore(t, storage, StoreConfig{})
	ctx := context.Background()
	task, _, _ := store.AddTask(ctx, "draft")

	changed, err := store.EditTask(ctx, domain.ColumnTodo, task.ID, "final")
	if err != nil || !changed {
		t.Fatalf("EditTask() changed=%t err=%v", changed, err)
	}
	if got, _ := store.Board().Find(domain.ColumnTodo, task.ID); got.Text != "final" {
		t.Fatalf("unexpected text %q", got.Text)
	}

	changed, err = store.EditTask(ctx, domain.ColumnDone, task.ID, "elsewhere")
	if err != nil || changed {
		t.Fatalf("edit in wrong column should be a no-op, changed=%t err=%v", changed, err)
	}
	if _, err := store.EditTask(ctx, domain.ColumnTodo, task.ID, "  "); !errors.Is(err, ErrEmptyText) {
		t.Fatalf("expected ErrEmptyText, got %v", err)
	}
	if got, _ := store.Board().Find(domain.ColumnTodo, task.ID); got.Text != "final" {
		t.Fatalf("rejected edit changed text to %q", got.Text)
	}
}

func TestStoreEditTaskIgnorePolicy(t *testing.T) {
	store := newTestStore(t, newFakeStorage(), StoreConfig{EmptyText: EmptyTextIgnore})
	ctx := context.Background()
	task, _, _ := store.AddTask(ctx, "keep")
	changed, err := store.EditTask(ctx, domain.ColumnTodo, task.ID, "")
	if err != nil || changed {
		t.Fatalf("EditTask() changed=%t err=%v", changed, err)
	}
	if got, _ := store.Board().Find(domain.ColumnTodo, task.ID); got.Text != "keep" {
		t.Fatalf("unexpected text %q", got.Text)
	}
}

func TestStoreDeleteTask(t *testing.T) {
	storage := newFakeStorage()
	store := newTestStore(t, storage, StoreConfig{})
	ctx := context.Background()
	first, _, _ := store.AddTask(ctx, "one")
	second, _, _ := store.AddTask(ctx, "two")
	writes := len(storage.writes)

	removed, err := store.DeleteTask(ctx, domain.ColumnTodo, "missing")
	if err != nil || removed {
		t.Fatalf("DeleteTask(missing) removed=%t err=%v", removed, err)
	}
	if len(storage.writes) != writes {
		t.Fatal("no-op delete should not persist")
	}

	removed, err = store.DeleteTask(ctx, domain.ColumnTodo, first.ID)
	if err != nil || !removed {
		t.Fatalf("DeleteTask() removed=%t err=%v", removed, err)
	}
	todo := store.Board().Column(domain.ColumnTodo)
	if len(todo) != 1 || todo[0].ID != second.ID {
		t.Fatalf("expected only %s to remain, got %#v", second.ID, todo)
	}
}

func TestStoreApplyDragPersists(t *testing.T) {
	storage := newFakeStorage()
	store := newTestStore(t, storage, StoreConfig{})
	ctx := context.Background()
	task, _, _ := store.AddTask(ctx, "move me")

	changed, err := store.ApplyDrag(ctx, domain.DragResult{Source: domain.Location{Column: domain.ColumnTodo}})
	if err != nil || changed {
		t.Fatalf("cancelled drag changed=%t err=%v", changed, err)
	}

	changed, err = store.ApplyDrag(ctx, domain.DragResult{
		Source:      domain.Location{Column: domain.ColumnTodo, Index: 0},
		Destination: &domain.Location{Column: domain.ColumnDone, Index: 0},
	})
	if err != nil || !changed {
		t.Fatalf("ApplyDrag() changed=%t err=%v", changed, err)
	}

	reloaded := NewStore(storage, nil, StoreConfig{})
	if _, err := reloaded.Load(ctx); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if _, ok := reloaded.Board().Find(domain.ColumnDone, task.ID); !ok {
		t.Fatalf("expected persisted move, got %#v", reloaded.Board())
	}
}

func TestStoreEditSessionLifecycle(t *testing.T) {
	store := newTestStore(t, newFakeStorage(), StoreConfig{})
	ctx := context.Background()
	task, _, _ := store.AddTask(ctx, "draft")

	if _, err := store.SaveEdit(ctx); !errors.Is(err, ErrNoEditSession) {
		t.Fatalf("expected ErrNoEditSession, got %v", err)
	}
	if _, err := store.BeginEdit(domain.ColumnDone, task.ID); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}

	session, err := store.BeginEdit(domain.ColumnTodo, task.ID)
	if err != nil {
		t.Fatalf("BeginEdit() error = %v", err)
	}
	if session.Text != "draft" {
		t.Fatalf("expected session seeded with text, got %q", session.Text)
	}
	if err := store.SetEditText(""); err != nil {
		t.Fatalf("SetEditText() error = %v", err)
	}
	if _, err := store.SaveEdit(ctx); !errors.Is(err, ErrEmptyText) {
		t.Fatalf("expected ErrEmptyText, got %v", err)
	}
	if _, ok := store.EditSession(); !ok {
		t.Fatal("rejected save should keep the session open")
	}

	_ = store.SetEditText("polished")
	changed, err := store.SaveEdit(ctx)
	if err != nil || !changed {
		t.Fatalf("SaveEdit() changed=%t err=%v", changed, err)
	}
	if _, ok := store.EditSession(); ok {
		t.Fatal("expected session cleared after save")
	}
	if got, _ := store.Board().Find(domain.ColumnTodo, task.ID); got.Text != "polished" {
		t.Fatalf("unexpected text %q", got.Text)
	}

	_, _ = store.BeginEdit(domain.ColumnTodo, task.ID)
	_ = store.SetEditText("discarded")
	store.CancelEdit()
	if _, ok := store.EditSession(); ok {
		t.Fatal("expected session cleared after cancel")
	}
	if got, _ := store.Board().Find(domain.ColumnTodo, task.ID); got.Text != "polished" {
		t.Fatalf("cancel changed text to %q", got.Text)
	}
}

func TestStoreEditSessionFollowsDraggedTask(t *testing.T) {
	store := newTestStore(t, newFakeStorage(), StoreConfig{})
	ctx := context.Background()
	task, _, _ := store.AddTask(ctx, "draft")
	_, _ = store.BeginEdit(domain.ColumnTodo, task.ID)
	_, _ = store.ApplyDrag(ctx, domain.DragResult{
		Source:      domain.Location{Column: domain.ColumnTodo, Index: 0},
		Destination: &domain.Location{Column: domain.ColumnInProgress, Index: 0},
	})
	session, ok := store.EditSession()
	if !ok || session.Column != domain.ColumnInProgress {
		t.Fatalf("expected session to follow task, got %#v ok=%t", session, ok)
	}
	_, _ = store.DeleteTask(ctx, domain.ColumnInProgress, task.ID)
	if _, ok := store.EditSession(); ok {
		t.Fatal("expected session cleared when its task is deleted")
	}
}

func TestStoreReloadDropsStaleEditSession(t *testing.T) {
	storage := newFakeStorage()
	store := newTestStore(t, storage, StoreConfig{})
	ctx := context.Background()
	task, _, _ := store.AddTask(ctx, "draft")
	_, _ = store.BeginEdit(domain.ColumnTodo, task.ID)

	storage.values[BoardKey] = `{"todo":[],"inProgress":[],"done":[]}`
	if _, err := store.Reload(ctx); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if _, ok := store.EditSession(); ok {
		t.Fatal("expected stale session to be dropped")
	}
}

func TestStoreThemePersistence(t *testing.T) {
	storage := newFakeStorage()
	store := newTestStore(t, storage, StoreConfig{})
	ctx := context.Background()
	theme, err := store.ToggleTheme(ctx)
	if err != nil {
		t.Fatalf("ToggleTheme() error = %v", err)
	}
	if theme != domain.ThemeLight || storage.values[ThemeKey] != "light" {
		t.Fatalf("unexpected theme %q stored %q", theme, storage.values[ThemeKey])
	}
	if err := store.SetTheme(ctx, "neon"); !errors.Is(err, domain.ErrInvalidTheme) {
		t.Fatalf("expected ErrInvalidTheme, got %v", err)
	}
	if err := store.SetTheme(ctx, domain.ThemeDark); err != nil {
		t.Fatalf("SetTheme() error = %v", err)
	}
	if storage.values[ThemeKey] != "dark" {
		t.Fatalf("expected dark persisted, got %q", storage.values[ThemeKey])
	}
}

func TestStoreKeepsMemoryStateWhenWriteFails(t *testing.T) {
	storage := newFakeStorage()
	store := newTestStore(t, storage, StoreConfig{})
	storage.setErr = errors.New("read-only")
	_, added, err := store.AddTask(context.Background(), "unsaved")
	if err == nil || !added {
		t.Fatalf("expected write error with added=true, got added=%t err=%v", added, err)
	}
	if store.Board().Len() != 1 {
		t.Fatal("expected in-memory board to keep the task")
	}
}

func TestStoreReplaceBoardNormalizes(t *testing.T) {
	storage := newFakeStorage()
	store := newTestStore(t, storage, StoreConfig{})
	board := domain.NewBoard()
	board.Columns[domain.ColumnTodo] = domain.Column{{ID: "a", Text: "A"}}
	board.Columns[domain.ColumnDone] = domain.Column{{ID: "a", Text: "dup"}}
	if err := store.ReplaceBoard(context.Background(), board); err != nil {
		t.Fatalf("ReplaceBoard() error = %v", err)
	}
	if store.Board().Len() != 1 {
		t.Fatalf("expected duplicate dropped, got %#v", store.Board())
	}
}

func TestStoreInvalidUTF8TextSurvivesReload(t *testing.T) {
	ctx := context.Background()
	storage := newFakeStorage()
	store := newTestStore(t, storage, StoreConfig{})

	task, added, err := store.AddTask(ctx, "caf\xe9 au lait")
	if err != nil || !added {
		t.Fatalf("AddTask() = %v, %v", added, err)
	}
	if _, err := store.EditTask(ctx, domain.ColumnTodo, task.ID, "th\xffe"); err != nil {
		t.Fatalf("EditTask() error = %v", err)
	}
	if _, _, err := store.AddTask(ctx, "br\xc3"); err != nil {
		t.Fatalf("AddTask() error = %v", err)
	}
	before := store.Board()
	if _, err := store.Reload(ctx); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	after := store.Board()
	if !before.Equal(after) {
		t.Fatalf("reload changed the board: before %#v, after %#v", before, after)
	}
	if got := after.Column(domain.ColumnTodo)[0].Text; got != "th\uFFFDe" {
		t.Fatalf("expected invalid byte replaced, got %q", got)
	}
}

func TestStoreKeepsSurroundingWhitespace(t *testing.T) {
	ctx := context.Background()
	storage := newFakeStorage()
	store := newTestStore(t, storage, StoreConfig{})

	task, added, err := store.AddTask(ctx, "  indented\n")
	if err != nil || !added {
		t.Fatalf("AddTask() = %v, %v", added, err)
	}
	if task.Text != "  indented\n" {
		t.Fatalf("expected raw text kept, got %q", task.Text)
	}
	if _, err := store.Reload(ctx); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if got, _ := store.Board().Find(domain.ColumnTodo, task.ID); got.Text != "  indented\n" {
		t.Fatalf("expected raw text after reload, got %q", got.Text)
	}
	changed, err := store.EditTask(ctx, domain.ColumnTodo, task.ID, "indented")
	if err != nil || !changed {
		t.Fatalf("EditTask() changed=%t err=%v", changed, err)
	}
}
