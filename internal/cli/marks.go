package cli

import (
	"fmt"
	"strings"
	"time"

	"deskboard-cli/internal/reorder"
	"deskboard-cli/internal/widgetdata"

	"github.com/spf13/cobra"
)

const markDateLayout = "2006-01-02"

func newMarksCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "marks",
		Aliases: []string{"mark"},
		Short:   "Calendar marks",
	}
	cmd.AddCommand(newMarksAddCmd(app))
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List calendar marks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, app, func(s *session) (any, error) {
				return map[string]any{"data": s.board.Snapshot().CalendarMarks}, nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "remove <mark-id>",
		Short: "Remove a calendar mark",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, app, func(s *session) (any, error) {
				found := false
				for _, m := range s.board.Snapshot().CalendarMarks {
					if m.ID == args[0] {
						found = true
						break
					}
				}
				if !found {
					return nil, errNotFound("mark", args[0])
				}
				s.board.RemoveCalendarMark(args[0])
				return map[string]any{"data": s.board.Snapshot().CalendarMarks}, nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "move <from> <to>",
		Short: "Move the mark at position <from> to position <to> (0-based)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, app, func(s *session) (any, error) {
				from, to, err := parseMove(args)
				if err != nil {
					return nil, err
				}
				if n := len(s.board.Snapshot().CalendarMarks); from >= n {
					return nil, widgetdata.IndexError{Index: from, Len: n}
				}
				s.board.MoveCalendarMark(reorder.To(from, to))
				return map[string]any{"data": s.board.Snapshot().CalendarMarks}, nil
			})
		},
	})
	return cmd
}

func newMarksAddCmd(app *App) *cobra.Command {
	var (
		date   string
		reason string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Mark a date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, app, func(s *session) (any, error) {
				d := strings.TrimSpace(date)
				if d == "" || d == "today" {
					d = app.now().Format(markDateLayout)
				}
				if _, err := time.Parse(markDateLayout, d); err != nil {
					return nil, fmt.Errorf("invalid --date %q (expected YYYY-MM-DD)", date)
				}
				m := s.board.NewCalendarMark(d, reason)
				s.board.AddCalendarMark(m)
				return map[string]any{"data": m}, nil
			})
		},
	}

	cmd.Flags().StringVar(&date, "date", "today", "Date to mark (YYYY-MM-DD)")
	cmd.Flags().StringVar(&reason, "reason", "", "Why the date matters")
	return cmd
}
