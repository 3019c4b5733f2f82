package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Backend is raw key/value persistence. Values are opaque bytes (JSON in practice).
type Backend interface {
	// Get returns ok=false when key is absent.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// Keys lists keys with the given prefix, sorted.
	Keys(ctx context.Context, prefix string) ([]string, error)
	Close() error
}

// Watchable is implemented by backends that live on the local filesystem.
// WatchPath returns the directory to watch and a predicate selecting relevant file names.
type Watchable interface {
	WatchPath() (dir string, match func(name string) bool)
}

type BackendFactory func(location string) (Backend, error)

var backendFactoryRegistry = struct {
	mu        sync.RWMutex
	factories map[string]BackendFactory
}{
	factories: map[string]BackendFactory{},
}

// RegisterBackend makes a backend available under scheme (e.g. "sqlite").
func RegisterBackend(scheme string, factory BackendFactory) {
	scheme = normalizeBackendScheme(scheme)
	if scheme == "" || factory == nil {
		return
	}
	backendFactoryRegistry.mu.Lock()
	defer backendFactoryRegistry.mu.Unlock()
	backendFactoryRegistry.factories[scheme] = factory
}

func lookupBackendFactory(scheme string) (BackendFactory, bool) {
	scheme = normalizeBackendScheme(scheme)
	backendFactoryRegistry.mu.RLock()
	defer backendFactoryRegistry.mu.RUnlock()
	f, ok := backendFactoryRegistry.factories[scheme]
	return f, ok
}

// BackendSchemes lists registered schemes, sorted.
func BackendSchemes() []string {
	backendFactoryRegistry.mu.RLock()
	defer backendFactoryRegistry.mu.RUnlock()
	out := make([]string, 0, len(backendFactoryRegistry.factories))
	for k := range backendFactoryRegistry.factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func normalizeBackendScheme(scheme string) string {
	return strings.ToLower(strings.TrimSpace(scheme))
}

// OpenBackend opens a backend from a DSN of the form scheme://location.
// A DSN without a scheme is treated as a sqlite file path.
func OpenBackend(dsn string) (Backend, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("store: empty dsn")
	}
	scheme, location, ok := strings.Cut(dsn, "://")
	if !ok {
		scheme, location = "sqlite", dsn
	}
	factory, found := lookupBackendFactory(scheme)
	if !found {
		return nil, fmt.Errorf("store: unknown backend %q (known: %s)", scheme, strings.Join(BackendSchemes(), ", "))
	}
	if normalizeBackendScheme(scheme) == "redis" {
		// go-redis parses the full URL itself.
		location = dsn
	}
	return factory(location)
}

func init() {
	RegisterBackend("sqlite", func(location string) (Backend, error) { return OpenSQLiteBackend(location) })
	RegisterBackend("file", func(location string) (Backend, error) { return OpenFileBackend(location) })
	RegisterBackend("redis", func(location string) (Backend, error) { return OpenRedisBackend(location) })
	RegisterBackend("memory", func(string) (Backend, error) { return NewMemoryBackend(), nil })
}
