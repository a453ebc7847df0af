package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/fang"
	"github.com/google/uuid"
	"github.com/hylla/tavla/internal/adapters/storage/sqlite"
	"github.com/hylla/tavla/internal/app"
	"github.com/hylla/tavla/internal/config"
	"github.com/hylla/tavla/internal/domain"
	"github.com/hylla/tavla/internal/platform"
	"github.com/hylla/tavla/internal/tui"
	"github.com/hylla/tavla/internal/watcher"
	"github.com/spf13/cobra"
)

// version is set at build time via ldflags.
var version = "dev"

// program is the part of *tea.Program the CLI drives.
type program interface {
	Run() (tea.Model, error)
	Send(msg tea.Msg)
}

var programFactory = func(m tea.Model) program {
	return tea.NewProgram(m)
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}

// run builds the command tree and executes it with args.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}
	root := newRootCommand(stderr)
	root.SetArgs(args)
	root.SetIn(os.Stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return fang.Execute(ctx, root, fang.WithVersion(version))
}

// rootFlags holds the global flag values shared by every command.
type rootFlags struct {
	configPath string
	dbPath     string
	appName    string
	devMode    bool
}

func newRootCommand(stderr io.Writer) *cobra.Command {
	env := platform.OverridesFromEnv(os.Getenv)
	flags := &rootFlags{appName: platform.DefaultAppName, devMode: version == "dev"}
	if env.AppName != "" {
		flags.appName = env.AppName
	}
	if env.DevModeSet {
		flags.devMode = env.DevMode
	}

	root := &cobra.Command{
		Use:   "tavla",
		Short: "A three-column kanban board for the terminal",
		Long: `tavla keeps a to-do board with To Do, In Progress and Done columns.
Run it without a command to open the board; cards can be dragged between
columns with the mouse or the keyboard. Subcommands edit the same board
from scripts.`,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd.Context(), flags, env, stderr)
		},
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to config TOML")
	root.PersistentFlags().StringVar(&flags.dbPath, "db", "", "path to sqlite database")
	root.PersistentFlags().StringVar(&flags.appName, "app", flags.appName, "application name for config/data path resolution")
	root.PersistentFlags().BoolVar(&flags.devMode, "dev", flags.devMode, "use dev mode paths (<app>-dev)")

	root.AddCommand(
		newAddCommand(flags, env, stderr),
		newEditCommand(flags, env, stderr),
		newDeleteCommand(flags, env, stderr),
		newMoveCommand(flags, env, stderr),
		newListCommand(flags, env, stderr),
		newExportCommand(flags, env, stderr),
		newImportCommand(flags, env, stderr),
		newThemeCommand(flags, env, stderr),
		newPathsCommand(flags, env),
	)
	return root
}

// resolved is the outcome of flag, env and config resolution.
type resolved struct {
	paths        platform.Paths
	configPath   string
	dbPath       string
	dbOverridden bool
	cfg          config.Config
}

// resolve applies flags over env over platform defaults, then loads config.
func resolve(flags *rootFlags, env platform.Overrides) (resolved, error) {
	paths, err := platform.DefaultPathsWithOptions(platform.Options{
		AppName: flags.appName,
		DevMode: flags.devMode,
	})
	if err != nil {
		return resolved{}, err
	}
	out := resolved{paths: paths, configPath: flags.configPath, dbPath: flags.dbPath}
	if strings.TrimSpace(out.configPath) == "" {
		out.configPath = paths.ConfigPath
		if env.ConfigPath != "" {
			out.configPath = env.ConfigPath
		}
	}
	out.dbOverridden = strings.TrimSpace(out.dbPath) != ""
	if !out.dbOverridden {
		out.dbPath = paths.DBPath
		if env.DBPath != "" {
			out.dbPath = env.DBPath
			out.dbOverridden = true
		}
	}

	cfg, err := config.Load(out.configPath, config.Default(out.dbPath))
	if err != nil {
		return resolved{}, fmt.Errorf("load config %q: %w", out.configPath, err)
	}
	if out.dbOverridden {
		cfg.Database.Path = out.dbPath
	}
	out.cfg = cfg
	return out, nil
}

// session is an open board: resolved config, logger, repository and store.
type session struct {
	resolved
	logger *runtimeLogger
	repo   *sqlite.Repository
	store  *app.Store
	stderr io.Writer
}

// openSession resolves config, configures logging and loads the board.
func openSession(ctx context.Context, flags *rootFlags, env platform.Overrides, stderr io.Writer, command string) (*session, error) {
	res, err := resolve(flags, env)
	if err != nil {
		return nil, err
	}
	logger, err := newRuntimeLogger(stderr, flags.appName, flags.devMode, res.cfg.Logging, time.Now)
	if err != nil {
		return nil, fmt.Errorf("configure runtime logger: %w", err)
	}
	if command == "tui" {
		logger.SetConsoleEnabled(false)
	}
	logger.Info("startup configuration resolved", "app", flags.appName, "dev_mode", flags.devMode, "command", command)
	logger.Debug("runtime paths resolved", "config_path", res.configPath, "data_dir", res.paths.DataDir, "db_path", res.cfg.Database.Path)
	if devPath := logger.DevLogPath(); devPath != "" {
		logger.Info("dev file logging enabled", "path", devPath)
	}

	repo, err := sqlite.Open(res.cfg.Database.Path)
	if err != nil {
		logger.Error("sqlite open failed", "db_path", res.cfg.Database.Path, "err", err)
		_ = logger.Close()
		return nil, fmt.Errorf("open sqlite repository: %w", err)
	}
	logger.Debug("sqlite repository ready", "db_path", res.cfg.Database.Path)

	store := app.NewStore(repo, newTaskID, app.StoreConfig{
		DefaultTheme: domain.Theme(strings.ToLower(res.cfg.UI.Theme)),
		EmptyText:    app.EmptyTextPolicy(res.cfg.Edit.EmptyText),
	})
	s := &session{resolved: res, logger: logger, repo: repo, store: store, stderr: stderr}
	report, err := store.Load(ctx)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("load board: %w", err)
	}
	s.reportLoad(report)
	return s, nil
}

// reportLoad logs data that had to be discarded while loading.
func (s *session) reportLoad(report app.LoadReport) {
	if report.BoardRepaired {
		s.logger.Warn("stored board was malformed; unreadable entries skipped", "key", app.BoardKey)
	}
	if report.ThemeInvalid {
		s.logger.Warn("stored theme is invalid; using default", "key", app.ThemeKey, "theme", s.cfg.UI.Theme)
	}
}

// Close releases the repository and log sinks.
func (s *session) Close() {
	if err := s.repo.Close(); err != nil {
		s.logger.Warn("sqlite close failed", "db_path", s.cfg.Database.Path, "err", err)
	}
	if err := s.logger.Close(); err != nil && s.logger.shouldLogToSink(s.logger.consoleSink) {
		_, _ = fmt.Fprintf(s.stderr, "warning: close runtime log sink: %v\n", err)
	}
}

// newTaskID returns a time-ordered UUIDv7, falling back to a random UUID.
func newTaskID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// runTUI opens the board and runs the interactive program until it quits.
func runTUI(ctx context.Context, flags *rootFlags, env platform.Overrides, stderr io.Writer) error {
	s, err := openSession(ctx, flags, env, stderr, "tui")
	if err != nil {
		return err
	}
	defer s.Close()
	logger := s.logger
	logger.Info("command flow start", "command", "tui")

	m := tui.NewModel(
		s.store,
		tui.WithContext(ctx),
		tui.WithColumnTitles(s.cfg.ColumnTitles()),
		tui.WithRenderMarkdown(s.cfg.UI.RenderMarkdown),
		tui.WithConfirmDelete(s.cfg.UI.ConfirmDelete),
		tui.WithKeyConfig(tui.KeyConfig{
			Grab:        s.cfg.Keys.Grab,
			ToggleTheme: s.cfg.Keys.ToggleTheme,
			Copy:        s.cfg.Keys.Copy,
		}),
		tui.WithClipboard(clipboard.WriteAll),
		tui.WithLoadReporter(s.reportLoad),
	)
	p := programFactory(m)

	if s.cfg.Watch.Enabled {
		stop, err := watchDatabase(ctx, s.cfg, logger, func() { p.Send(tui.ReloadMsg{}) })
		if err != nil {
			// the board still works without live reload
			logger.Warn("database watcher unavailable", "db_path", s.cfg.Database.Path, "err", err)
		} else {
			defer stop()
		}
	}

	logger.Info("starting tui program loop")
	if _, err := p.Run(); err != nil {
		logger.Error("tui program terminated with error", "err", err)
		return fmt.Errorf("run tui program: %w", err)
	}
	logger.Info("command flow complete", "command", "tui")
	return nil
}

// watchDatabase calls reload whenever the database files change on disk. The
// returned func stops the watcher and waits for it to exit.
func watchDatabase(ctx context.Context, cfg config.Config, logger *runtimeLogger, reload func()) (func(), error) {
	dbPath := cfg.Database.Path
	w, err := watcher.New(
		[]string{filepath.Dir(dbPath)},
		func() {
			logger.Debug("database change detected", "db_path", dbPath)
			reload()
		},
		watcher.WithDebounce(time.Duration(cfg.Watch.DebounceMS)*time.Millisecond),
		watcher.WithFilter(watcher.MatchPrefix(dbPath)),
	)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run(ctx, func(err error) {
			logger.Warn("database watcher error", "err", err)
		})
	}()
	return func() {
		cancel()
		_ = w.Close()
		<-done
	}, nil
}
