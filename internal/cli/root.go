package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"deskboard-cli/internal/format"
	"deskboard-cli/internal/logging"
	"deskboard-cli/internal/store"
	"deskboard-cli/internal/tui"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type App struct {
	StoreDSN   string
	Ephemeral  bool
	PrettyJSON bool
	Format     string
	LogLevel   string

	// now and startTUI are replaced in tests.
	now      func() time.Time
	startTUI func(tui.Options) error
}

func NewRootCmd() *cobra.Command {
	app := &App{now: time.Now, startTUI: tui.Run}

	cmd := &cobra.Command{
		Use:          "deskboard",
		Short:        "Deskboard: a personal widget dashboard for the terminal",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive dashboard
  deskboard

  # Scriptable commands
  deskboard widgets add --type notes
  deskboard notes add widget-1f0c... "buy milk"
  deskboard theme toggle

  # Direct widget lookup (shortcut for: deskboard widgets show <widget-id>)
  deskboard widget-1f0c...
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&app.StoreDSN, "store", envOr("DESKBOARD_STORE", ""), "Store DSN (sqlite://PATH, file://DIR, redis://HOST/DB, memory://); default from config.yaml")
	cmd.PersistentFlags().BoolVar(&app.Ephemeral, "ephemeral", false, "Keep everything in memory for this run (same as --store memory://)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("DESKBOARD_FORMAT", "json"), "Output format (json|yaml)")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", envOr("DESKBOARD_LOG_LEVEL", ""), "Enable file logging at this level (debug|info|warn|error)")

	cmd.AddCommand(newWidgetsCmd(app))
	cmd.AddCommand(newThemeCmd(app))
	cmd.AddCommand(newLayoutCmd(app))
	cmd.AddCommand(newCalcCmd(app))
	cmd.AddCommand(newMarksCmd(app))
	cmd.AddCommand(newNotesCmd(app))
	cmd.AddCommand(newTodoCmd(app))
	cmd.AddCommand(newExportCmd(app))
	cmd.AddCommand(newImportCmd(app))
	cmd.AddCommand(newConfigCmd(app))
	cmd.AddCommand(newDoctorCmd(app))

	return cmd
}

func runTUI(app *App) error {
	e, err := loadEnv(app)
	if err != nil {
		return err
	}
	defer e.log.Sync() //nolint:errcheck

	runErr := app.startTUI(tui.Options{
		Store:  e.st,
		Logger: e.log,
		Watch:  e.cfg.WatchEnabled(),
		Now:    app.now,
	})
	// Close flushes the last edits made before quitting.
	if err := e.st.Close(); err != nil {
		e.log.Error("final store flush failed", zap.Error(err))
		runErr = errors.Join(runErr, fmt.Errorf("save on exit: %w", err))
	}
	return runErr
}

// env is everything a command needs: resolved config, logger and an open store.
type env struct {
	cfg       *store.Config
	configDir string
	log       *zap.Logger
	st        *store.Store
}

func loadEnv(app *App) (*env, error) {
	dir, err := store.ConfigDir()
	if err != nil {
		return nil, err
	}
	cfg, err := store.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logOpts := logging.Options{
		Enabled: cfg.Log.Enabled || app.LogLevel != "",
		Dir:     cfg.LogDir(dir),
		Level:   cfg.Log.Level,
	}
	if app.LogLevel != "" {
		logOpts.Level = app.LogLevel
	}
	log, err := logging.New(logOpts)
	if err != nil {
		return nil, err
	}

	dsn := app.StoreDSN
	switch {
	case app.Ephemeral:
		dsn = "memory://"
	case dsn == "":
		dsn = cfg.StoreDSN(dir)
	}
	st, err := store.Open(dsn, store.WithLogger(log), store.WithDebounce(cfg.DebounceWindow()))
	if err != nil {
		return nil, fmt.Errorf("open store %q: %w", dsn, err)
	}
	log.Debug("store opened", zap.String("dsn", dsn))
	return &env{cfg: cfg, configDir: dir, log: log, st: st}, nil
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
