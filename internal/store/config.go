package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configFileName    = "config.yaml"
	defaultSQLiteName = "deskboard.sqlite"
)

// Config is the user configuration in <configDir>/config.yaml. Every field is optional.
type Config struct {
	// Store is a backend DSN (sqlite://, file://, redis://, memory://).
	Store string `yaml:"store,omitempty"`

	// Debounce is a Go duration string for the write quiescence window (e.g. "300ms").
	Debounce string `yaml:"debounce,omitempty"`

	Log LogConfig `yaml:"log,omitempty"`
	TUI TUIConfig `yaml:"tui,omitempty"`
}

type LogConfig struct {
	Enabled bool   `yaml:"enabled,omitempty"`
	Level   string `yaml:"level,omitempty"`
	// Dir overrides <configDir>/logs.
	Dir string `yaml:"dir,omitempty"`
}

type TUIConfig struct {
	// Watch reloads the dashboard when another process writes the store. Defaults to true.
	Watch *bool `yaml:"watch,omitempty"`
}

func ConfigDir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.deskboard).
	if v := strings.TrimSpace(os.Getenv("DESKBOARD_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".deskboard"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// LoadConfig reads the config file. A missing file yields the zero Config.
func LoadConfig() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func SaveConfig(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return atomicWriteFile(dir, "config.yaml.*.tmp", path, b, 0o600)
}

// DebounceWindow parses Debounce, falling back to DefaultDebounce when unset or invalid.
func (c Config) DebounceWindow() time.Duration {
	s := strings.TrimSpace(c.Debounce)
	if s == "" {
		return DefaultDebounce
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return DefaultDebounce
	}
	return d
}

// StoreDSN returns the configured DSN or the default sqlite file under configDir.
func (c Config) StoreDSN(configDir string) string {
	if s := strings.TrimSpace(c.Store); s != "" {
		return s
	}
	return "sqlite://" + filepath.Join(configDir, defaultSQLiteName)
}

func (c Config) LogDir(configDir string) string {
	if s := strings.TrimSpace(c.Log.Dir); s != "" {
		return s
	}
	return filepath.Join(configDir, "logs")
}

func (c Config) WatchEnabled() bool {
	if c.TUI.Watch == nil {
		return true
	}
	return *c.TUI.Watch
}
