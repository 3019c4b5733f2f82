package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestLoadConfig_MissingFileIsZero(t *testing.T) {
	t.Setenv("DESKBOARD_CONFIG_DIR", t.TempDir())

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, &Config{}, cfg)
	assert.Equal(t, DefaultDebounce, cfg.DebounceWindow())
	assert.True(t, cfg.WatchEnabled())
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DESKBOARD_CONFIG_DIR", dir)

	off := false
	want := &Config{
		Store:    "file:///tmp/deskboard",
		Debounce: "50ms",
		Log:      LogConfig{Enabled: true, Level: "debug"},
		TUI:      TUIConfig{Watch: &off},
	}
	require.NoError(t, SaveConfig(want))

	got, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, 50*time.Millisecond, got.DebounceWindow())
	assert.False(t, got.WatchEnabled())
	assert.Equal(t, filepath.Join(dir, "logs"), got.LogDir(dir))
}

func TestConfig_Defaults(t *testing.T) {
	t.Parallel()

	cfg := Config{Debounce: "soon"}
	assert.Equal(t, DefaultDebounce, cfg.DebounceWindow())
	assert.Equal(t, "sqlite://"+filepath.Join("/cfg", "deskboard.sqlite"), cfg.StoreDSN("/cfg"))

	cfg.Store = "memory://"
	assert.Equal(t, "memory://", cfg.StoreDSN("/cfg"))
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DESKBOARD_CONFIG_DIR", dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("store: [unterminated"), 0o644))

	_, err := LoadConfig()
	require.Error(t, err)
}

func TestSaveConfig_ConcurrentWriters_DoesNotCorruptConfig(t *testing.T) {
	cfgDir := t.TempDir()
	t.Setenv("DESKBOARD_CONFIG_DIR", cfgDir)

	const n = 32
	errCh := make(chan error, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			cfg := &Config{Store: fmt.Sprintf("file:///tmp/ws-%d", i)}
			if err := SaveConfig(cfg); err != nil {
				errCh <- err
			}
		}(i)
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		t.Errorf("concurrent SaveConfig: %v", err)
	}

	b, err := os.ReadFile(filepath.Join(cfgDir, "config.yaml"))
	require.NoError(t, err)
	var cfg Config
	require.NoError(t, yaml.Unmarshal(b, &cfg), "config must stay valid YAML")
	assert.Contains(t, cfg.Store, "file:///tmp/ws-")
}
