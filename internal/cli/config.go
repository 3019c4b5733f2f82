package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"deskboard-cli/internal/store"

	"github.com/spf13/cobra"
)

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change config.yaml",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := store.ConfigDir()
			if err != nil {
				return writeErr(cmd, err)
			}
			cfg, err := store.LoadConfig()
			if err != nil {
				return writeErr(cmd, err)
			}
			path, _ := store.ConfigPath()
			dsn := app.StoreDSN
			if dsn == "" {
				dsn = cfg.StoreDSN(dir)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"path":     path,
				"store":    dsn,
				"debounce": cfg.DebounceWindow().String(),
				"log": map[string]any{
					"enabled": cfg.Log.Enabled,
					"level":   cfg.Log.Level,
					"dir":     cfg.LogDir(dir),
				},
				"tui": map[string]any{"watch": cfg.WatchEnabled()},
				"backends": store.BackendSchemes(),
			}})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a config key (store, debounce, log.enabled, log.level, log.dir, tui.watch)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := store.LoadConfig()
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := setConfigKey(cfg, args[0], args[1]); err != nil {
				return writeErr(cmd, err)
			}
			if err := store.SaveConfig(cfg); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"key": args[0], "value": args[1]}})
		},
	})
	return cmd
}

func setConfigKey(cfg *store.Config, key, value string) error {
	value = strings.TrimSpace(value)
	switch key {
	case "store":
		if value != "" {
			b, err := store.OpenBackend(value)
			if err != nil {
				return err
			}
			_ = b.Close()
		}
		cfg.Store = value
	case "debounce":
		if value != "" {
			if _, err := time.ParseDuration(value); err != nil {
				return fmt.Errorf("invalid debounce %q: %w", value, err)
			}
		}
		cfg.Debounce = value
	case "log.enabled":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid log.enabled %q: %w", value, err)
		}
		cfg.Log.Enabled = b
	case "log.level":
		cfg.Log.Level = value
	case "log.dir":
		cfg.Log.Dir = value
	case "tui.watch":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid tui.watch %q: %w", value, err)
		}
		cfg.TUI.Watch = &b
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return nil
}
