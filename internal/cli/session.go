package cli

import (
	"context"
	"errors"

	"deskboard-cli/internal/registry"
	"deskboard-cli/internal/settings"
	"deskboard-cli/internal/store"

	"github.com/spf13/cobra"
)

// session is one command's view of the dashboard: the persisted aggregate in a
// container wired to the store.
type session struct {
	ctx   context.Context
	app   *App
	env   *env
	board *settings.Container
	kinds *registry.Registry[registry.Info]
}

func (s *session) store() *store.Store { return s.env.st }

// run opens the store, loads the dashboard, runs fn and flushes every write before
// returning. fn's result, when non-nil, is written to stdout.
func run(cmd *cobra.Command, app *App, fn func(s *session) (any, error)) error {
	e, err := loadEnv(app)
	if err != nil {
		return writeErr(cmd, err)
	}
	defer e.log.Sync() //nolint:errcheck

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	board := settings.NewContainer(settings.Load(ctx, e.st),
		settings.WithClock(app.now),
		settings.WithContainerLogger(e.log),
	)
	board.Persist(e.st)

	out, runErr := fn(&session{ctx: ctx, app: app, env: e, board: board, kinds: registry.Builtin()})
	// Close flushes; a failed write must fail the command.
	if err := e.st.Close(); err != nil {
		runErr = errors.Join(runErr, err)
	}
	if runErr != nil {
		return writeErr(cmd, runErr)
	}
	if out == nil {
		return nil
	}
	return writeOut(cmd, app, out)
}
