package config

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger returns a no-op logger unless a log file is configured: the
// terminal belongs to the UI.
func NewLogger(lc LogConfig) (*zap.Logger, error) {
	if lc.File == "" {
		return zap.NewNop(), nil
	}

	level := lc.Level
	if level == "" {
		level = "info"
	}
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)
	cfg.OutputPaths = []string{lc.File}
	cfg.ErrorOutputPaths = []string{lc.File}
	return cfg.Build()
}
