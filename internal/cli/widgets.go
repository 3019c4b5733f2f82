package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"deskboard-cli/internal/model"
	"deskboard-cli/internal/registry"
	"deskboard-cli/internal/reorder"
	"deskboard-cli/internal/widgetdata"

	"github.com/spf13/cobra"
)

// widgetView is the CLI rendering of a widget: the record plus its resolved title and style.
type widgetView struct {
	Position int               `json:"position"`
	ID       string            `json:"id"`
	Type     string            `json:"type"`
	Title    string            `json:"title"`
	Known    bool              `json:"known"`
	Props    map[string]any    `json:"props"`
	Style    model.WidgetStyle `json:"style,omitempty"`
}

func viewWidget(s *session, pos int, w model.WidgetRecord, snap model.Settings) widgetView {
	return widgetView{
		Position: pos,
		ID:       w.ID,
		Type:     w.Type,
		Title:    registry.Title(s.kinds, w.Type, snap.WidgetTitles[w.ID]),
		Known:    s.kinds.Has(w.Type),
		Props:    w.Props,
		Style:    snap.WidgetStyles[w.ID],
	}
}

func widgetViews(s *session) []widgetView {
	snap := s.board.Snapshot()
	out := make([]widgetView, 0, len(snap.Widgets))
	for i, w := range snap.Widgets {
		out = append(out, viewWidget(s, i, w, snap))
	}
	return out
}

func newWidgetsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "widgets",
		Aliases: []string{"widget", "w"},
		Short:   "Widget commands",
	}
	cmd.AddCommand(newWidgetsListCmd(app))
	cmd.AddCommand(newWidgetsKindsCmd(app))
	cmd.AddCommand(newWidgetsAddCmd(app))
	cmd.AddCommand(newWidgetsRemoveCmd(app))
	cmd.AddCommand(newWidgetsMoveCmd(app))
	cmd.AddCommand(newWidgetsTitleCmd(app))
	cmd.AddCommand(newWidgetsStyleCmd(app))
	cmd.AddCommand(newWidgetsShowCmd(app))
	return cmd
}

func newWidgetsListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List widgets in dashboard order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, app, func(s *session) (any, error) {
				return map[string]any{"data": widgetViews(s)}, nil
			})
		},
	}
}

func newWidgetsKindsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List widget types that can be added",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds := registry.Builtin()
			out := make([]registry.Info, 0)
			for _, k := range kinds.Kinds() {
				info, _ := kinds.Resolve(k)
				out = append(out, info)
			}
			return writeOut(cmd, app, map[string]any{"data": out})
		},
	}
}

func newWidgetsAddCmd(app *App) *cobra.Command {
	var (
		kind         string
		id           string
		title        string
		props        []string
		allowUnknown bool
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a widget to the end of the dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, app, func(s *session) (any, error) {
				kind = strings.TrimSpace(kind)
				if !s.kinds.Has(kind) && !allowUnknown {
					return nil, errUnknownKind(kind, s.kinds.Kinds())
				}
				p, err := parseProps(props)
				if err != nil {
					return nil, err
				}
				if id == "" {
					id = s.board.NewWidgetID()
				}
				s.board.AddWidget(model.WidgetRecord{ID: id, Type: kind, Props: p})
				if cmd.Flags().Changed("title") {
					s.board.UpdateWidgetTitle(id, title)
				}

				snap := s.board.Snapshot()
				i := snap.WidgetIndex(id)
				return map[string]any{"data": viewWidget(s, i, snap.Widgets[i], snap)}, nil
			})
		},
	}

	cmd.Flags().StringVar(&kind, "type", "", "Widget type (see `deskboard widgets kinds`)")
	cmd.Flags().StringVar(&id, "id", "", "Widget id (default: generated)")
	cmd.Flags().StringVar(&title, "title", "", "Display title override")
	cmd.Flags().StringArrayVar(&props, "prop", nil, "Widget prop as key=value (value parsed as JSON when possible; repeatable)")
	cmd.Flags().BoolVar(&allowUnknown, "allow-unknown", false, "Allow a type this version cannot render")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

// parseProps turns key=value pairs into widget props. Values that parse as JSON keep
// their JSON type; anything else is a string.
func parseProps(pairs []string) (map[string]any, error) {
	out := map[string]any{}
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid --prop %q: expected key=value", p)
		}
		var parsed any
		if err := json.Unmarshal([]byte(v), &parsed); err == nil {
			out[k] = parsed
		} else {
			out[k] = v
		}
	}
	return out, nil
}

func newWidgetsRemoveCmd(app *App) *cobra.Command {
	var purge bool

	cmd := &cobra.Command{
		Use:   "remove <widget-id>",
		Short: "Remove a widget from the dashboard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, app, func(s *session) (any, error) {
				id := args[0]
				if _, ok := s.board.Snapshot().FindWidget(id); !ok {
					return nil, errNotFound("widget", id)
				}
				s.board.RemoveWidget(id)
				if purge {
					if err := widgetdata.Notes(s.store(), id).Clear(s.ctx); err != nil {
						return nil, err
					}
					if err := widgetdata.Tasks(s.store(), id).Clear(s.ctx); err != nil {
						return nil, err
					}
				}
				return map[string]any{"data": widgetViews(s)}, nil
			})
		},
	}

	cmd.Flags().BoolVar(&purge, "purge", false, "Also delete the widget's notes/tasks")
	return cmd
}

func newWidgetsMoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "move <from> <to>",
		Short: "Move the widget at position <from> to position <to> (0-based)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, app, func(s *session) (any, error) {
				from, to, err := parseMove(args)
				if err != nil {
					return nil, err
				}
				if n := len(s.board.Snapshot().Widgets); from >= n {
					return nil, widgetdata.IndexError{Index: from, Len: n}
				}
				s.board.MoveWidget(reorder.To(from, to))
				return map[string]any{"data": widgetViews(s)}, nil
			})
		},
	}
}

func parseMove(args []string) (from, to int, err error) {
	if from, err = parseIndex("from", args[0]); err != nil {
		return 0, 0, err
	}
	if to, err = parseIndex("to", args[1]); err != nil {
		return 0, 0, err
	}
	return from, to, nil
}

func newWidgetsTitleCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "title <widget-id> <title>",
		Short: "Set a widget's display title (empty string clears to blank)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, app, func(s *session) (any, error) {
				id := args[0]
				snap := s.board.Snapshot()
				i := snap.WidgetIndex(id)
				if i < 0 {
					return nil, errNotFound("widget", id)
				}
				s.board.UpdateWidgetTitle(id, args[1])
				snap = s.board.Snapshot()
				return map[string]any{"data": viewWidget(s, i, snap.Widgets[i], snap)}, nil
			})
		},
	}
}

func newWidgetsStyleCmd(app *App) *cobra.Command {
	var (
		bg     string
		styles []string
	)

	cmd := &cobra.Command{
		Use:   "style <widget-id>",
		Short: "Merge style overrides into a widget's style",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, app, func(s *session) (any, error) {
				id := args[0]
				snap := s.board.Snapshot()
				i := snap.WidgetIndex(id)
				if i < 0 {
					return nil, errNotFound("widget", id)
				}
				partial := model.WidgetStyle{}
				if cmd.Flags().Changed("bg") {
					partial[model.StyleBackgroundColor] = bg
				}
				for _, kv := range styles {
					k, v, ok := strings.Cut(kv, "=")
					if !ok || strings.TrimSpace(k) == "" {
						return nil, fmt.Errorf("invalid --set %q: expected key=value", kv)
					}
					partial[strings.TrimSpace(k)] = v
				}
				if len(partial) == 0 {
					return nil, fmt.Errorf("nothing to change: pass --bg or --set")
				}
				s.board.UpdateWidgetStyle(id, partial)
				snap = s.board.Snapshot()
				return map[string]any{"data": viewWidget(s, i, snap.Widgets[i], snap)}, nil
			})
		},
	}

	cmd.Flags().StringVar(&bg, "bg", "", "Background colour (e.g. #1e88e5)")
	cmd.Flags().StringArrayVar(&styles, "set", nil, "Style key=value (repeatable)")
	return cmd
}

func newWidgetsShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <widget-id>",
		Short: "Show a widget and its data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, app, func(s *session) (any, error) {
				id := args[0]
				snap := s.board.Snapshot()
				i := snap.WidgetIndex(id)
				if i < 0 {
					return nil, errNotFound("widget", id)
				}
				w := snap.Widgets[i]
				out := map[string]any{"widget": viewWidget(s, i, w, snap)}
				switch w.Type {
				case registry.KindNotes:
					out["notes"] = widgetdata.Notes(s.store(), id).Items(s.ctx)
				case registry.KindTodo:
					tasks := widgetdata.Tasks(s.store(), id).Items(s.ctx)
					out["tasks"] = tasks
					out["remaining"] = widgetdata.Remaining(tasks)
				case registry.KindCalculator:
					out["history"] = snap.CalculatorHistory
				case registry.KindCalendar:
					out["marks"] = snap.CalendarMarks
				}
				return map[string]any{"data": out}, nil
			})
		},
	}
}
