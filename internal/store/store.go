package store

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultDebounce is the quiescence window for coalescing writes.
	DefaultDebounce = 300 * time.Millisecond

	backgroundWriteTimeout = 5 * time.Second
)

var ErrClosed = errors.New("store: closed")

// Store is the durable store adapter: synchronous reads and debounced,
// last-value-wins writes on top of a Backend.
//
// Write failures never reach the caller of Save. They are logged and reported to the
// optional write error handler; the in-memory state of callers stays authoritative.
type Store struct {
	backend      Backend
	log          *zap.Logger
	window       time.Duration
	onWriteError func(key string, err error)

	mu         sync.Mutex
	pending    map[string][]byte
	debouncers map[string]*Debouncer
	closed     bool

	// writeMu serializes "take pending value + write it" so an older value can never
	// land after a newer one.
	writeMu sync.Mutex
}

type Option func(*Store)

func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

func WithDebounce(d time.Duration) Option {
	return func(s *Store) {
		if d >= 0 {
			s.window = d
		}
	}
}

// WithWriteErrorHandler registers fn to be called after a failed background write.
// fn runs on the timer goroutine.
func WithWriteErrorHandler(fn func(key string, err error)) Option {
	return func(s *Store) { s.onWriteError = fn }
}

// SetWriteErrorHandler replaces the handler registered with WithWriteErrorHandler.
func (s *Store) SetWriteErrorHandler(fn func(key string, err error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onWriteError = fn
}

func New(b Backend, opts ...Option) *Store {
	s := &Store{
		backend:    b,
		log:        zap.NewNop(),
		window:     DefaultDebounce,
		pending:    map[string][]byte{},
		debouncers: map[string]*Debouncer{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open opens the backend named by dsn and wraps it.
func Open(dsn string, opts ...Option) (*Store, error) {
	b, err := OpenBackend(dsn)
	if err != nil {
		return nil, err
	}
	return New(b, opts...), nil
}

func (s *Store) Backend() Backend { return s.backend }

func (s *Store) Window() time.Duration { return s.window }

// Load reads key and decodes it as T. A missing key, a read failure, or a value that
// fails to parse all yield ok=false; failures are logged.
func Load[T any](ctx context.Context, s *Store, key string) (T, bool) {
	var v T
	ok := s.LoadInto(ctx, key, &v)
	if !ok {
		var zero T
		return zero, false
	}
	return v, true
}

// LoadInto decodes key onto dst, which callers may pre-populate with defaults so that
// fields missing from the stored value keep them. A value still waiting in the debounce
// window is returned in preference to the backend's copy.
func (s *Store) LoadInto(ctx context.Context, key string, dst any) bool {
	s.mu.Lock()
	raw, pending := s.pending[key]
	s.mu.Unlock()

	if !pending {
		var (
			ok  bool
			err error
		)
		raw, ok, err = s.backend.Get(ctx, key)
		if err != nil {
			s.log.Warn("store read failed", zap.String("key", key), zap.Error(err))
			return false
		}
		if !ok {
			return false
		}
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		s.log.Warn("stored value is corrupt; ignoring", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// Save snapshots v and schedules it to be written once key has been quiet for the
// debounce window. Only a marshal failure is returned.
func (s *Store) Save(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.pending[key] = raw
	d := s.debouncers[key]
	if d == nil {
		d = NewDebouncer(s.window)
		s.debouncers[key] = d
	}
	s.mu.Unlock()

	d.Trigger(func(ctx context.Context) error { return s.writePending(ctx, key) })
	return nil
}

// SaveNow writes v immediately, replacing anything pending for key.
func (s *Store) SaveNow(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.pending[key] = raw
	d := s.debouncers[key]
	s.mu.Unlock()

	if d != nil {
		d.Stop()
	}
	return s.writePending(ctx, key)
}

// Delete removes key from the backend and drops any pending write for it.
func (s *Store) Delete(ctx context.Context, key string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	delete(s.pending, key)
	d := s.debouncers[key]
	delete(s.debouncers, key)
	s.mu.Unlock()

	if d != nil {
		d.Stop()
	}
	return s.backend.Delete(ctx, key)
}

// Keys lists stored keys with prefix, including keys whose first write is still pending.
func (s *Store) Keys(ctx context.Context, prefix string) ([]string, error) {
	keys, err := s.backend.Keys(ctx, prefix)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	for k := range s.pending {
		if strings.HasPrefix(k, prefix) && !slices.Contains(keys, k) {
			keys = append(keys, k)
		}
	}
	s.mu.Unlock()
	slices.Sort(keys)
	return keys, nil
}

// Pending returns the number of keys waiting to be written.
func (s *Store) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Flush writes every pending value now and returns the joined write errors.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	keys := make([]string, 0, len(s.pending))
	for k := range s.pending {
		keys = append(keys, k)
	}
	s.mu.Unlock()

	var errs []error
	for _, k := range keys {
		s.mu.Lock()
		d := s.debouncers[k]
		s.mu.Unlock()
		if d != nil {
			if _, err := d.Flush(ctx); err != nil {
				errs = append(errs, err)
				continue
			}
		}
		// Covers a Save whose Trigger has not run yet; a no-op once written.
		if err := s.writePending(ctx, k); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close flushes pending writes and closes the backend. Later saves return ErrClosed.
func (s *Store) Close() error {
	flushErr := s.Flush(context.Background())

	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	return errors.Join(flushErr, s.backend.Close())
}

func (s *Store) writePending(ctx context.Context, key string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	raw, ok := s.pending[key]
	delete(s.pending, key)
	s.mu.Unlock()
	if !ok {
		return nil
	}

	if err := s.backend.Put(ctx, key, raw); err != nil {
		s.log.Error("store write failed", zap.String("key", key), zap.Error(err))
		s.mu.Lock()
		fn := s.onWriteError
		s.mu.Unlock()
		if fn != nil {
			fn(key, err)
		}
		return err
	}
	s.log.Debug("store write", zap.String("key", key), zap.Int("bytes", len(raw)))
	return nil
}
