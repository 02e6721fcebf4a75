// Package cli wires the cobra commands of the timetracker binary. The root
// command opens the TUI; subcommands expose each operation non-interactively.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sadopc/timetracker/internal/config"
	"github.com/sadopc/timetracker/internal/logging"
	"github.com/sadopc/timetracker/internal/stats"
	"github.com/sadopc/timetracker/internal/store"
	"github.com/sadopc/timetracker/internal/tui"
)

// Context carries global CLI state shared by every command.
type Context struct {
	// Flags set on the root command.
	ConfigPath string
	DBPath     string
	LogLevel   string
	EnvFile    string

	Clock   stats.Clock
	Stderr  io.Writer
	Confirm func(ctx context.Context, title string) (bool, error)
	RunTUI  func(ctx context.Context, app tui.App) error

	cfg    config.Config
	store  *store.Store
	repo   *store.Repository
	logOut io.Closer
}

// NewContext returns a Context wired to the terminal.
func NewContext() *Context {
	return &Context{
		EnvFile: ".env",
		Clock:   stats.SystemClock{},
		Stderr:  os.Stderr,
		Confirm: confirmPrompt,
		RunTUI:  runProgram,
	}
}

// Execute builds the command tree and runs it, releasing the store after.
func Execute(ctx context.Context, c *Context, args []string) error {
	root := New(c)
	root.SetArgs(args)
	defer c.Close()
	return root.ExecuteContext(ctx)
}

// New creates the root command.
func New(c *Context) *cobra.Command {
	root := &cobra.Command{
		Use:           "timetracker",
		Short:         "Log minutes per day and see them as a heatmap",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd == cmd.Root())
		},
		RunE: c.runTUI,
	}

	f := root.PersistentFlags()
	f.StringVar(&c.ConfigPath, "config", "", "Config file (default ~/.config/timetracker/config.yaml)")
	f.StringVar(&c.DBPath, "db", "", "Database file, overrides db.path")
	f.StringVar(&c.LogLevel, "log-level", "", "Log level, overrides log.level")

	root.AddCommand(
		newAddCommand(c).Cmd(),
		newListCommand(c).Cmd(),
		newDeleteCommand(c).Cmd(),
		newSetCommand(c).Cmd(),
		newHeatmapCommand(c).Cmd(),
		newWeeklyCommand(c).Cmd(),
		newTrendCommand(c).Cmd(),
		newExportCommand(c).Cmd(),
		newImportCommand(c).Cmd(),
		newOffsetCommand(c).Cmd(),
		newClearCommand(c).Cmd(),
	)
	return root
}

// setup loads configuration, routes logs and opens the store. The TUI owns
// the terminal, so its logs go to a file.
func (c *Context) setup(interactive bool) error {
	if c.EnvFile != "" {
		if err := config.LoadDotEnv(c.EnvFile); err != nil {
			return err
		}
	}

	path := c.ConfigPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return fmt.Errorf("resolve config path: %w", err)
		}
		path = p
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if c.DBPath != "" {
		cfg.DB.Path = c.DBPath
	}
	if c.LogLevel != "" {
		cfg.Log.Level = c.LogLevel
	}
	c.cfg = cfg

	logFile := cfg.Log.File
	if interactive && logFile == "" {
		if logFile, err = config.DefaultLogPath(); err != nil {
			return fmt.Errorf("resolve log path: %w", err)
		}
	}
	if c.logOut, err = logging.Setup(cfg.Log.Level, logFile, c.Stderr); err != nil {
		return fmt.Errorf("set up logging: %w", err)
	}

	c.store, err = store.New(cfg.DB.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	c.repo, err = store.NewRepository(c.store)
	if err != nil {
		return err
	}
	return nil
}

// Close releases the store and the log file.
func (c *Context) Close() error {
	var errs []error
	if c.store != nil {
		errs = append(errs, c.store.Close())
		c.store = nil
	}
	if c.logOut != nil {
		errs = append(errs, c.logOut.Close())
		c.logOut = nil
	}
	return errors.Join(errs...)
}

func (c *Context) runTUI(cmd *cobra.Command, _ []string) error {
	th, err := c.cfg.Thresholds()
	if err != nil {
		return err
	}
	app := tui.NewApp(c.repo, tui.Options{
		Clock:      c.Clock,
		Thresholds: th,
		ExportDir:  c.cfg.Export.Dir,
	})
	log.Info("starting TUI")
	return c.RunTUI(cmd.Context(), app)
}

func runProgram(ctx context.Context, app tui.App) error {
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func confirmPrompt(ctx context.Context, title string) (bool, error) {
	var ok bool
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(title).
			Affirmative("Yes").
			Negative("No").
			Value(&ok),
	))
	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, err
	}
	return ok, nil
}
