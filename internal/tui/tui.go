package tui

import (
	"context"
	"errors"
	"time"

	"deskboard-cli/internal/logging"
	"deskboard-cli/internal/registry"
	"deskboard-cli/internal/store"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// watchSettle coalesces bursts of file events (WAL + db, tmp + rename) into one reload.
const watchSettle = 150 * time.Millisecond

type Options struct {
	Store  *store.Store
	Logger *zap.Logger
	// Watch reloads the dashboard when another process writes the store.
	Watch bool
	Now   func() time.Time
	// Kinds defaults to registry.Builtin().
	Kinds *registry.Registry[registry.Info]
}

func Run(opts Options) error {
	log := logging.OrNop(opts.Logger)
	applyColorProfilePreference()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := newAppModel(opts)
	if opts.Watch {
		ch, err := opts.Store.Watch(ctx, watchSettle)
		switch {
		case errors.Is(err, store.ErrNotWatchable):
			log.Debug("store is not watchable; live reload disabled")
		case err != nil:
			log.Warn("store watch failed; live reload disabled", zap.Error(err))
		default:
			m.changes = ch
		}
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	opts.Store.SetWriteErrorHandler(func(key string, err error) {
		p.Send(writeFailedMsg{key: key, err: err})
	})
	defer opts.Store.SetWriteErrorHandler(nil)

	_, err := p.Run()
	return err
}

// waitForChange blocks until the store watcher fires.
func waitForChange(ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return storeChangedMsg{}
	}
}

func clearStatusAfter(seq int) tea.Cmd {
	return tea.Tick(statusTTL, func(time.Time) tea.Msg { return statusClearMsg{seq: seq} })
}
