package store

import (
	"context"
	"errors"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ErrNotWatchable is returned by Watch for backends that do not live on local disk.
var ErrNotWatchable = errors.New("store: backend is not watchable")

// Watch signals on the returned channel when the backend's files change. Bursts of
// events within settle are coalesced into one signal. The channel closes when ctx ends.
//
// Our own writes are reported too; callers compare the reloaded value with what they
// already hold.
func (s *Store) Watch(ctx context.Context, settle time.Duration) (<-chan struct{}, error) {
	w, ok := s.backend.(Watchable)
	if !ok {
		return nil, ErrNotWatchable
	}
	dir, match := w.WatchPath()

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, err
	}

	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		defer fw.Close()

		var (
			timer  *time.Timer
			timerC <-chan time.Time
		)
		for {
			select {
			case <-ctx.Done():
				if timer != nil {
					timer.Stop()
				}
				return
			case ev, ok := <-fw.Events:
				if !ok {
					return
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
					continue
				}
				if match != nil && !match(ev.Name) {
					continue
				}
				if timer == nil {
					timer = time.NewTimer(settle)
				} else {
					timer.Reset(settle)
				}
				timerC = timer.C
			case err, ok := <-fw.Errors:
				if !ok {
					return
				}
				s.log.Sugar().Warnw("store watch error", "error", err)
			case <-timerC:
				timerC = nil
				select {
				case out <- struct{}{}:
				default:
				}
			}
		}
	}()
	return out, nil
}
