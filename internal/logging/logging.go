// Package logging builds the zap logger shared by the CLI, TUI and server.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options selects where and how verbosely to log.
type Options struct {
	// File receives JSON log lines. Empty with Stderr false yields a no-op logger.
	File string
	// Stderr logs to standard error instead of File (used by `serve`).
	Stderr  bool
	Level   string
	Verbose bool
}

// New builds a production logger. The TUI owns the terminal, so interactive
// runs must log to a file or not at all.
func New(opts Options) (*zap.Logger, error) {
	if opts.File == "" && !opts.Stderr {
		return zap.NewNop(), nil
	}

	level := zapcore.InfoLevel
	if opts.Level != "" {
		if err := level.Set(opts.Level); err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
	}
	if opts.Verbose {
		level = zapcore.DebugLevel
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(level)
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if opts.Stderr {
		config.OutputPaths = []string{"stderr"}
	} else {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o700); err != nil {
			return nil, fmt.Errorf("log dir: %w", err)
		}
		config.OutputPaths = []string{opts.File}
	}
	config.ErrorOutputPaths = []string{"stderr"}

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}
