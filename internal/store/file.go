package store

import (
	"context"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const fileBackendExt = ".json"

// FileBackend stores each key as <dir>/<escaped key>.json.
type FileBackend struct {
	dir string
}

func OpenFileBackend(dir string) (*FileBackend, error) {
	dir = filepath.Clean(strings.TrimSpace(dir))
	if dir == "" || dir == "." {
		return nil, errors.New("file backend: missing dir")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileBackend{dir: dir}, nil
}

func (b *FileBackend) path(key string) string {
	return filepath.Join(b.dir, url.PathEscape(key)+fileBackendExt)
}

func (b *FileBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, err := os.ReadFile(b.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return v, true, nil
}

func (b *FileBackend) Put(_ context.Context, key string, value []byte) error {
	return atomicWriteFile(b.dir, ".kv.*.tmp", b.path(key), value, 0o644)
}

func (b *FileBackend) Delete(_ context.Context, key string) error {
	err := os.Remove(b.path(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (b *FileBackend) Keys(_ context.Context, prefix string) ([]string, error) {
	ents, err := os.ReadDir(b.dir)
	if err != nil {
		return nil, err
	}
	out := []string{}
	for _, e := range ents {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, fileBackendExt) || strings.HasPrefix(name, ".") {
			continue
		}
		key, err := url.PathUnescape(strings.TrimSuffix(name, fileBackendExt))
		if err != nil {
			continue
		}
		if strings.HasPrefix(key, prefix) {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (b *FileBackend) Close() error { return nil }

func (b *FileBackend) WatchPath() (string, func(string) bool) {
	return b.dir, func(name string) bool {
		base := filepath.Base(name)
		return strings.HasSuffix(base, fileBackendExt) && !strings.HasPrefix(base, ".")
	}
}
