package cli

import (
	"fmt"
	"strings"

	"deskboard-cli/internal/model"
	"deskboard-cli/internal/registry"
	"deskboard-cli/internal/reorder"
	"deskboard-cli/internal/widgetdata"

	"github.com/spf13/cobra"
)

// requireWidget checks id is on the dashboard with the given kind.
func requireWidget(s *session, id, kind string) error {
	w, ok := s.board.Snapshot().FindWidget(id)
	if !ok {
		return errNotFound("widget", id)
	}
	if w.Type != kind {
		return fmt.Errorf("widget %s is a %s widget, not %s", id, w.Type, kind)
	}
	return nil
}

func newNotesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notes",
		Short: "Notes widget data",
	}

	notes := func(s *session, id string) (widgetdata.List[string], error) {
		if err := requireWidget(s, id, registry.KindNotes); err != nil {
			return widgetdata.List[string]{}, err
		}
		return widgetdata.Notes(s.store(), id), nil
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list <widget-id>",
		Short: "List notes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, app, func(s *session) (any, error) {
				l, err := notes(s, args[0])
				if err != nil {
					return nil, err
				}
				return map[string]any{"data": l.Items(s.ctx)}, nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "add <widget-id> <text...>",
		Short: "Append a note",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, app, func(s *session) (any, error) {
				l, err := notes(s, args[0])
				if err != nil {
					return nil, err
				}
				out, err := widgetdata.AddNote(s.ctx, l, strings.Join(args[1:], " "))
				return map[string]any{"data": out}, err
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "edit <widget-id> <index> <text...>",
		Short: "Replace the note at index",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, app, func(s *session) (any, error) {
				l, err := notes(s, args[0])
				if err != nil {
					return nil, err
				}
				i, err := parseIndex("index", args[1])
				if err != nil {
					return nil, err
				}
				out, err := widgetdata.EditNote(s.ctx, l, i, strings.Join(args[2:], " "))
				return map[string]any{"data": out}, err
			})
		},
	})
	cmd.AddCommand(newListRemoveCmd(app, "note", func(s *session, id string, i int) (any, error) {
		l, err := notes(s, id)
		if err != nil {
			return nil, err
		}
		return l.Remove(s.ctx, i)
	}))
	cmd.AddCommand(newListMoveCmd(app, "note", func(s *session, id string, d reorder.Drag) (any, error) {
		l, err := notes(s, id)
		if err != nil {
			return nil, err
		}
		if n := len(l.Items(s.ctx)); d.Source >= n {
			return nil, widgetdata.IndexError{Index: d.Source, Len: n}
		}
		return l.Move(s.ctx, d)
	}))
	return cmd
}

func newTodoCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "todo",
		Aliases: []string{"todos"},
		Short:   "To-do widget data",
	}

	tasks := func(s *session, id string) (widgetdata.List[model.Task], error) {
		if err := requireWidget(s, id, registry.KindTodo); err != nil {
			return widgetdata.List[model.Task]{}, err
		}
		return widgetdata.Tasks(s.store(), id), nil
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list <widget-id>",
		Short: "List tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, app, func(s *session) (any, error) {
				l, err := tasks(s, args[0])
				if err != nil {
					return nil, err
				}
				items := l.Items(s.ctx)
				return map[string]any{
					"data": items,
					"meta": map[string]any{"remaining": widgetdata.Remaining(items)},
				}, nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "add <widget-id> <text...>",
		Short: "Append a task",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, app, func(s *session) (any, error) {
				l, err := tasks(s, args[0])
				if err != nil {
					return nil, err
				}
				out, err := widgetdata.AddTask(s.ctx, l, strings.Join(args[1:], " "))
				return map[string]any{"data": out}, err
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "edit <widget-id> <index> <text...>",
		Short: "Replace the text of the task at index",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, app, func(s *session) (any, error) {
				l, err := tasks(s, args[0])
				if err != nil {
					return nil, err
				}
				i, err := parseIndex("index", args[1])
				if err != nil {
					return nil, err
				}
				out, err := widgetdata.EditTask(s.ctx, l, i, strings.Join(args[2:], " "))
				return map[string]any{"data": out}, err
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "toggle <widget-id> <index>",
		Short: "Flip a task between open and done",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, app, func(s *session) (any, error) {
				l, err := tasks(s, args[0])
				if err != nil {
					return nil, err
				}
				i, err := parseIndex("index", args[1])
				if err != nil {
					return nil, err
				}
				out, err := widgetdata.ToggleTask(s.ctx, l, i)
				return map[string]any{"data": out}, err
			})
		},
	})
	cmd.AddCommand(newListRemoveCmd(app, "task", func(s *session, id string, i int) (any, error) {
		l, err := tasks(s, id)
		if err != nil {
			return nil, err
		}
		return l.Remove(s.ctx, i)
	}))
	cmd.AddCommand(newListMoveCmd(app, "task", func(s *session, id string, d reorder.Drag) (any, error) {
		l, err := tasks(s, id)
		if err != nil {
			return nil, err
		}
		if n := len(l.Items(s.ctx)); d.Source >= n {
			return nil, widgetdata.IndexError{Index: d.Source, Len: n}
		}
		return l.Move(s.ctx, d)
	}))
	return cmd
}

func newListRemoveCmd(app *App, noun string, fn func(s *session, id string, i int) (any, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <widget-id> <index>",
		Short: "Remove the " + noun + " at index",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, app, func(s *session) (any, error) {
				i, err := parseIndex("index", args[1])
				if err != nil {
					return nil, err
				}
				out, err := fn(s, args[0], i)
				if err != nil {
					return nil, err
				}
				return map[string]any{"data": out}, nil
			})
		},
	}
}

func newListMoveCmd(app *App, noun string, fn func(s *session, id string, d reorder.Drag) (any, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "move <widget-id> <from> <to>",
		Short: "Move the " + noun + " at <from> to <to> (0-based)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, app, func(s *session) (any, error) {
				from, to, err := parseMove(args[1:])
				if err != nil {
					return nil, err
				}
				out, err := fn(s, args[0], reorder.To(from, to))
				if err != nil {
					return nil, err
				}
				return map[string]any{"data": out}, nil
			})
		},
	}
}
