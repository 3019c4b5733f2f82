// Package logging builds the process logger.
//
// The TUI owns the terminal, so logs go to a file under the config dir rather than
// stderr. When logging is disabled everything is discarded.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const logFileName = "deskboard.log"

type Options struct {
	Enabled bool
	// Dir defaults to <configDir>/logs when empty.
	Dir string
	// Level is one of debug|info|warn|error. Defaults to info.
	Level string
}

// New returns a JSON file logger, or a no-op logger when opts.Enabled is false.
func New(opts Options) (*zap.Logger, error) {
	if !opts.Enabled {
		return zap.NewNop(), nil
	}
	dir := strings.TrimSpace(opts.Dir)
	if dir == "" {
		return nil, fmt.Errorf("logging: missing log dir")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	level, err := parseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{filepath.Join(dir, logFileName)}
	cfg.ErrorOutputPaths = []string{filepath.Join(dir, logFileName)}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.Sampling = nil
	return cfg.Build()
}

func parseLevel(s string) (zapcore.Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return zapcore.InfoLevel, nil
	}
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return zapcore.InfoLevel, fmt.Errorf("logging: unknown level %q", s)
	}
	return lvl, nil
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
