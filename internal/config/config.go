package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// EmptyTextMode controls what an edit with blank text does.
type EmptyTextMode string

const (
	EmptyTextReject EmptyTextMode = "reject"
	EmptyTextIgnore EmptyTextMode = "ignore"
)

type Config struct {
	Database DatabaseConfig `toml:"database"`
	Logging  LoggingConfig  `toml:"logging"`
	UI       UIConfig       `toml:"ui"`
	Edit     EditConfig     `toml:"edit"`
	Board    BoardConfig    `toml:"board"`
	Watch    WatchConfig    `toml:"watch"`
	Keys     KeyConfig      `toml:"keys"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type LoggingConfig struct {
	Level   string               `toml:"level"`
	DevFile LoggingDevFileConfig `toml:"dev_file"`
}

type LoggingDevFileConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

type UIConfig struct {
	Theme          string `toml:"theme"` // dark | light, used until a theme is saved
	RenderMarkdown bool   `toml:"render_markdown"`
	ConfirmDelete  bool   `toml:"confirm_delete"`
}

type EditConfig struct {
	EmptyText EmptyTextMode `toml:"empty_text"`
}

type BoardConfig struct {
	TodoTitle       string `toml:"todo_title"`
	InProgressTitle string `toml:"in_progress_title"`
	DoneTitle       string `toml:"done_title"`
}

type WatchConfig struct {
	Enabled    bool `toml:"enabled"`
	DebounceMS int  `toml:"debounce_ms"`
}

type KeyConfig struct {
	Grab        string `toml:"grab"`
	ToggleTheme string `toml:"toggle_theme"`
	Copy        string `toml:"copy"`
}

func Default(dbPath string) Config {
	return Config{
		Database: DatabaseConfig{
			Path: dbPath,
		},
		Logging: LoggingConfig{
			Level: "info",
			DevFile: LoggingDevFileConfig{
				Enabled: true,
				Dir:     ".tavla/log",
			},
		},
		UI: UIConfig{
			Theme:          "dark",
			RenderMarkdown: true,
			ConfirmDelete:  false,
		},
		Edit: EditConfig{
			EmptyText: EmptyTextReject,
		},
		Board: BoardConfig{
			TodoTitle:       "To Do",
			InProgressTitle: "In Progress",
			DoneTitle:       "Done",
		},
		Watch: WatchConfig{
			Enabled:    true,
			DebounceMS: 150,
		},
		Keys: KeyConfig{
			Grab:        "space",
			ToggleTheme: "t",
			Copy:        "y",
		},
	}
}

func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(content) == 0 {
		return cfg, nil
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return errors.New("database path is required")
	}

	switch strings.TrimSpace(strings.ToLower(c.Logging.Level)) {
	case "", "debug", "info", "warn", "error", "fatal":
	default:
		return fmt.Errorf("invalid logging.level: %q", c.Logging.Level)
	}
	if c.Logging.DevFile.Enabled && strings.TrimSpace(c.Logging.DevFile.Dir) == "" {
		return errors.New("logging.dev_file.dir is required when dev_file is enabled")
	}

	switch strings.TrimSpace(strings.ToLower(c.UI.Theme)) {
	case "dark", "light":
	default:
		return fmt.Errorf("invalid ui.theme: %q", c.UI.Theme)
	}

	switch c.Edit.EmptyText {
	case EmptyTextReject, EmptyTextIgnore:
	default:
		return fmt.Errorf("invalid edit.empty_text: %q", c.Edit.EmptyText)
	}

	titles := map[string]string{
		"board.todo_title":        c.Board.TodoTitle,
		"board.in_progress_title": c.Board.InProgressTitle,
		"board.done_title":        c.Board.DoneTitle,
	}
	for field, title := range titles {
		if strings.TrimSpace(title) == "" {
			return fmt.Errorf("%s is required", field)
		}
	}

	if c.Watch.DebounceMS < 0 {
		return errors.New("watch.debounce_ms must be >= 0")
	}
	return nil
}

// ColumnTitles returns display titles in column order.
func (c Config) ColumnTitles() [3]string {
	return [3]string{
		strings.TrimSpace(c.Board.TodoTitle),
		strings.TrimSpace(c.Board.InProgressTitle),
		strings.TrimSpace(c.Board.DoneTitle),
	}
}

func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
