package tui

import (
	"strings"
	"unicode"

	"charm.land/bubbles/v2/key"
)

// KeyConfig holds user-configurable key overrides.
type KeyConfig struct {
	Grab        string
	ToggleTheme string
	Copy        string
}

// keyMap represents key map data used by this package.
type keyMap struct {
	quit        key.Binding
	reload      key.Binding
	toggleHelp  key.Binding
	moveLeft    key.Binding
	moveRight   key.Binding
	moveUp      key.Binding
	moveDown    key.Binding
	addTask     key.Binding
	editTask    key.Binding
	deleteTask  key.Binding
	taskInfo    key.Binding
	grab        key.Binding
	drop        key.Binding
	cancel      key.Binding
	toggleTheme key.Binding
	copyTask    key.Binding
}

// newKeyMap constructs key map.
func newKeyMap() keyMap {
	return keyMap{
		quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		reload:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		toggleHelp:  key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		moveLeft:    key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "column left")),
		moveRight:   key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "column right")),
		moveUp:      key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "task up")),
		moveDown:    key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "task down")),
		addTask:     key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new task")),
		editTask:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit task")),
		deleteTask:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete task")),
		taskInfo:    key.NewBinding(key.WithKeys("i", "enter"), key.WithHelp("i/enter", "task info")),
		grab:        key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "grab/drop")),
		drop:        key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "drop")),
		cancel:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		toggleTheme: key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "toggle theme")),
		copyTask:    key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy text")),
	}
}

// applyConfig overrides configurable bindings.
func (k *keyMap) applyConfig(cfg KeyConfig) {
	configureBinding(&k.grab, cfg.Grab, "space", "grab/drop")
	configureBinding(&k.toggleTheme, cfg.ToggleTheme, "t", "toggle theme")
	configureBinding(&k.copyTask, cfg.Copy, "y", "copy text")
}

// configureBinding replaces the keys and help text of one binding.
func configureBinding(b *key.Binding, raw, fallback, desc string) {
	keys, help := parseBindingKeys(raw, fallback)
	b.SetKeys(keys...)
	b.SetHelp(help, desc)
}

// parseBindingKeys turns a configured key into matcher keys and help text.
func parseBindingKeys(raw, fallback string) ([]string, string) {
	value := strings.TrimSpace(raw)
	if raw == " " {
		value = "space"
	}
	if value == "" {
		value = fallback
	}
	if strings.EqualFold(value, "space") {
		return []string{" ", "space"}, "space"
	}
	runes := []rune(value)
	if len(runes) == 1 {
		if unicode.IsUpper(runes[0]) {
			return []string{value, "shift+" + strings.ToLower(value)}, value
		}
		return []string{value}, value
	}
	return []string{strings.ToLower(value)}, value
}

// ShortHelp handles short help.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.addTask, k.editTask, k.deleteTask, k.grab, k.taskInfo, k.toggleTheme, k.toggleHelp, k.quit,
	}
}

// FullHelp handles full help.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.addTask, k.editTask, k.deleteTask, k.taskInfo, k.copyTask},
		{k.moveLeft, k.moveRight, k.moveUp, k.moveDown},
		{k.grab, k.drop, k.cancel},
		{k.toggleTheme, k.reload, k.toggleHelp, k.quit},
	}
}

// dragHelp lists the bindings active while a card is held.
func (k keyMap) dragHelp() []key.Binding {
	return []key.Binding{k.moveLeft, k.moveRight, k.moveUp, k.moveDown, k.drop, k.cancel}
}
