package cli

import (
	"fmt"

	"deskboard-cli/internal/model"

	"github.com/spf13/cobra"
)

func newThemeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "theme",
		Short: "Light/dark theme",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the current theme",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, app, func(s *session) (any, error) {
				return map[string]any{"data": s.board.Snapshot().Theme}, nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "toggle",
		Short: "Switch between light and dark",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, app, func(s *session) (any, error) {
				s.board.ToggleTheme()
				return map[string]any{"data": s.board.Snapshot().Theme}, nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:       "set <light|dark>",
		Short:     "Set the theme",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(model.ThemeLight), string(model.ThemeDark)},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, app, func(s *session) (any, error) {
				t := model.Theme(args[0])
				if t != model.ThemeLight && t != model.ThemeDark {
					return nil, fmt.Errorf("invalid theme %q (expected light|dark)", args[0])
				}
				s.board.SetTheme(t)
				return map[string]any{"data": s.board.Snapshot().Theme}, nil
			})
		},
	})
	return cmd
}

func newLayoutCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Grid/list layout",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the current layout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, app, func(s *session) (any, error) {
				return map[string]any{"data": s.board.Snapshot().LayoutMode}, nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "toggle",
		Short: "Switch between grid and list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, app, func(s *session) (any, error) {
				s.board.ToggleLayout()
				return map[string]any{"data": s.board.Snapshot().LayoutMode}, nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:       "set <grid|list>",
		Short:     "Set the layout",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(model.LayoutGrid), string(model.LayoutList)},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, app, func(s *session) (any, error) {
				m := model.LayoutMode(args[0])
				if m != model.LayoutGrid && m != model.LayoutList {
					return nil, fmt.Errorf("invalid layout %q (expected grid|list)", args[0])
				}
				s.board.SetLayout(m)
				return map[string]any{"data": s.board.Snapshot().LayoutMode}, nil
			})
		},
	})
	return cmd
}
