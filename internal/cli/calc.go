package cli

import (
	"github.com/spf13/cobra"
)

func newCalcCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Calculator history",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "add <expression> <result>",
		Short: "Record a calculation (the expression is not evaluated)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, app, func(s *session) (any, error) {
				s.board.AddCalculation(args[0], args[1])
				h := s.board.Snapshot().CalculatorHistory
				return map[string]any{"data": h[len(h)-1]}, nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List calculator history, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, app, func(s *session) (any, error) {
				return map[string]any{"data": s.board.Snapshot().CalculatorHistory}, nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Clear calculator history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, app, func(s *session) (any, error) {
				s.board.ClearCalculatorHistory()
				return map[string]any{"data": s.board.Snapshot().CalculatorHistory}, nil
			})
		},
	})
	return cmd
}
