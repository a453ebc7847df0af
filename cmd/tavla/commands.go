package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/hylla/tavla/internal/app"
	"github.com/hylla/tavla/internal/domain"
	"github.com/hylla/tavla/internal/platform"
	"github.com/spf13/cobra"
)

// withSession runs fn against an opened board and logs the command flow.
func withSession(cmd *cobra.Command, flags *rootFlags, env platform.Overrides, stderr io.Writer, fn func(context.Context, *session) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	name := cmd.Name()
	s, err := openSession(ctx, flags, env, stderr, name)
	if err != nil {
		return err
	}
	defer s.Close()
	s.logger.Info("command flow start", "command", name)
	if err := fn(ctx, s); err != nil {
		s.logger.Error("command flow failed", "command", name, "err", err)
		return fmt.Errorf("run %s command: %w", name, err)
	}
	s.logger.Info("command flow complete", "command", name)
	return nil
}

func newAddCommand(flags *rootFlags, env platform.Overrides, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "add TEXT...",
		Short: "Add a task to the end of To Do",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, flags, env, stderr, func(ctx context.Context, s *session) error {
				task, added, err := s.store.AddTask(ctx, strings.Join(args, " "))
				if err != nil {
					return err
				}
				if !added {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "nothing added: text is empty")
					return nil
				}
				s.logger.Debug("task added", "task_id", task.ID)
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), task.ID)
				return nil
			})
		},
	}
}

func newEditCommand(flags *rootFlags, env platform.Overrides, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "edit COLUMN ID TEXT...",
		Short: "Replace the text of a task",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			columnID, err := domain.ParseColumnID(args[0])
			if err != nil {
				return err
			}
			taskID := strings.TrimSpace(args[1])
			return withSession(cmd, flags, env, stderr, func(ctx context.Context, s *session) error {
				if _, ok := s.store.Board().Find(columnID, taskID); !ok {
					return fmt.Errorf("%w: %s in %s", domain.ErrTaskNotFound, taskID, columnID)
				}
				changed, err := s.store.EditTask(ctx, columnID, taskID, strings.Join(args[2:], " "))
				if err != nil {
					return err
				}
				if !changed {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no change")
					return nil
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "updated", taskID)
				return nil
			})
		},
	}
}

func newDeleteCommand(flags *rootFlags, env platform.Overrides, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "delete COLUMN ID",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			columnID, err := domain.ParseColumnID(args[0])
			if err != nil {
				return err
			}
			taskID := strings.TrimSpace(args[1])
			return withSession(cmd, flags, env, stderr, func(ctx context.Context, s *session) error {
				removed, err := s.store.DeleteTask(ctx, columnID, taskID)
				if err != nil {
					return err
				}
				if !removed {
					return fmt.Errorf("%w: %s in %s", domain.ErrTaskNotFound, taskID, columnID)
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "deleted", taskID)
				return nil
			})
		},
	}
}

func newMoveCommand(flags *rootFlags, env platform.Overrides, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "move SRC_COLUMN SRC_INDEX DST_COLUMN DST_INDEX",
		Short: "Move a task the way a drag and drop would",
		Long: `Moves the task at SRC_INDEX of SRC_COLUMN to DST_INDEX of DST_COLUMN.
Indexes are zero-based. A destination index past the end appends.`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := parseLocation(args[0], args[1])
			if err != nil {
				return err
			}
			destination, err := parseLocation(args[2], args[3])
			if err != nil {
				return err
			}
			return withSession(cmd, flags, env, stderr, func(ctx context.Context, s *session) error {
				col := s.store.Board().Column(source.Column)
				if source.Index >= len(col) {
					return fmt.Errorf("%w: %s has no task at index %d", domain.ErrTaskNotFound, source.Column, source.Index)
				}
				taskID := col[source.Index].ID
				changed, err := s.store.ApplyDrag(ctx, domain.DragResult{Source: source, Destination: &destination})
				if err != nil {
					return err
				}
				if !changed {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no change")
					return nil
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "moved", taskID, "to", destination.Column)
				return nil
			})
		},
	}
}

// parseLocation reads a column name and a zero-based index.
func parseLocation(rawColumn, rawIndex string) (domain.Location, error) {
	columnID, err := domain.ParseColumnID(rawColumn)
	if err != nil {
		return domain.Location{}, err
	}
	index, err := strconv.Atoi(strings.TrimSpace(rawIndex))
	if err != nil {
		return domain.Location{}, fmt.Errorf("invalid index %q: %w", rawIndex, err)
	}
	if index < 0 {
		return domain.Location{}, fmt.Errorf("invalid index %d: must be >= 0", index)
	}
	return domain.Location{Column: columnID, Index: index}, nil
}

func newListCommand(flags *rootFlags, env platform.Overrides, stderr io.Writer) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, flags, env, stderr, func(_ context.Context, s *session) error {
				board := s.store.Board()
				if asJSON {
					return writeBoardJSON(cmd.OutOrStdout(), board)
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), renderBoardTable(board, s.cfg.ColumnTitles()))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "output the board as JSON")
	return cmd
}

// renderBoardTable lays out one row per task with its column, position, id
// and first line of text.
func renderBoardTable(board domain.Board, titles [3]string) string {
	rows := make([][]string, 0, board.Len())
	for _, columnID := range domain.Columns() {
		for i, task := range board.Column(columnID) {
			text, _, _ := strings.Cut(task.Text, "\n")
			rows = append(rows, []string{titles[columnID], strconv.Itoa(i), task.ID, text})
		}
	}
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230"))
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("62"))).
		Headers("COLUMN", "#", "ID", "TEXT").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Rows(rows...)
	return t.Render()
}

// writeBoardJSON writes the persisted board shape, indented.
func writeBoardJSON(w io.Writer, board domain.Board) error {
	encoded, err := app.EncodeBoard(board)
	if err != nil {
		return err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, encoded, "", "  "); err != nil {
		return fmt.Errorf("indent board json: %w", err)
	}
	out.WriteByte('\n')
	if _, err := w.Write(out.Bytes()); err != nil {
		return fmt.Errorf("write board json: %w", err)
	}
	return nil
}

func newExportCommand(flags *rootFlags, env platform.Overrides, stderr io.Writer) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the board as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, flags, env, stderr, func(_ context.Context, s *session) error {
				board := s.store.Board()
				if outPath == "" || outPath == "-" {
					return writeBoardJSON(cmd.OutOrStdout(), board)
				}
				var buf bytes.Buffer
				if err := writeBoardJSON(&buf, board); err != nil {
					return err
				}
				if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
					return fmt.Errorf("create export output dir: %w", err)
				}
				if err := os.WriteFile(outPath, buf.Bytes(), 0o644); err != nil {
					return fmt.Errorf("write export file: %w", err)
				}
				s.logger.Info("board exported", "path", outPath, "tasks", board.Len())
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&outPath, "out", "-", "output file path ('-' for stdout)")
	return cmd
}

func newImportCommand(flags *rootFlags, env platform.Overrides, stderr io.Writer) *cobra.Command {
	var inPath string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Replace the board with a JSON export",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(inPath) == "" {
				return errors.New("--in is required")
			}
			content, err := os.ReadFile(inPath)
			if err != nil {
				return fmt.Errorf("read import file: %w", err)
			}
			if !json.Valid(content) {
				return fmt.Errorf("decode board json: %s is not valid JSON", inPath)
			}
			board, lossy := app.DecodeBoard(content)
			return withSession(cmd, flags, env, stderr, func(ctx context.Context, s *session) error {
				if lossy {
					s.logger.Warn("import skipped malformed entries", "path", inPath)
				}
				if err := s.store.ReplaceBoard(ctx, board); err != nil {
					return err
				}
				count := s.store.Board().Len()
				s.logger.Info("board imported", "path", inPath, "tasks", count)
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "imported %d tasks\n", count)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&inPath, "in", "", "input board JSON file")
	return cmd
}

func newThemeCommand(flags *rootFlags, env platform.Overrides, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:       "theme [dark|light|toggle]",
		Short:     "Show or change the saved theme",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"dark", "light", "toggle"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, flags, env, stderr, func(ctx context.Context, s *session) error {
				if len(args) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), s.store.Theme())
					return nil
				}
				if strings.EqualFold(strings.TrimSpace(args[0]), "toggle") {
					theme, err := s.store.ToggleTheme(ctx)
					if err != nil {
						return err
					}
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), theme)
					return nil
				}
				theme, err := domain.ParseTheme(args[0])
				if err != nil {
					return err
				}
				if err := s.store.SetTheme(ctx, theme); err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), theme)
				return nil
			})
		},
	}
}

func newPathsCommand(flags *rootFlags, env platform.Overrides) *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Print resolved config and data paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := resolve(flags, env)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "app: %s\n", flags.appName)
			_, _ = fmt.Fprintf(out, "dev_mode: %t\n", flags.devMode)
			_, _ = fmt.Fprintf(out, "config: %s\n", res.configPath)
			_, _ = fmt.Fprintf(out, "data_dir: %s\n", res.paths.DataDir)
			_, _ = fmt.Fprintf(out, "db: %s\n", res.cfg.Database.Path)
			return nil
		},
	}
}
