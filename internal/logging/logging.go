// Package logging configures the zap logger shared by bridgegen commands.
// Logs always go to stderr or a file, never to the report stream.
package logging

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds logger configuration
type Config struct {
	Level  string // debug, info, warn, error
	Format string // json or console
	File   string // optional, appended to
}

// DefaultConfig returns the default logger configuration
func DefaultConfig() Config {
	return Config{Level: "warn", Format: "console"}
}

// New builds a logger from cfg.
func New(cfg Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	var zc zap.Config
	switch cfg.Format {
	case "json":
		zc = zap.NewProductionConfig()
	case "console", "":
		zc = zap.NewDevelopmentConfig()
		zc.Development = false
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	default:
		return nil, fmt.Errorf("invalid log format %q", cfg.Format)
	}

	zc.Level = zap.NewAtomicLevelAt(level)
	zc.DisableStacktrace = true
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}
	if cfg.File != "" {
		zc.OutputPaths = []string{cfg.File}
	}

	return zc.Build()
}

// Phase logs the start of a processing phase and returns a function that
// logs its completion with the elapsed time.
func Phase(logger *zap.Logger, name string, fields ...zap.Field) func(...zap.Field) {
	start := time.Now()
	logger.Debug("phase started", append([]zap.Field{zap.String("phase", name)}, fields...)...)

	return func(extra ...zap.Field) {
		done := []zap.Field{
			zap.String("phase", name),
			zap.Duration("elapsed", time.Since(start)),
		}
		logger.Info("phase complete", append(done, extra...)...)
	}
}

// FileProcessed logs the outcome of processing one file.
func FileProcessed(logger *zap.Logger, path string, constructors, diagnostics int) {
	logger.Debug("file processed",
		zap.String("file", path),
		zap.Int("constructors", constructors),
		zap.Int("diagnostics", diagnostics))
}
