// Package observability owns the process-wide CLI logger.
//
// Logs go to stderr so stdout carries only the emitted job.
package observability

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logging profiles.
const (
	ProfileConsole    = "console"
	ProfileStructured = "structured"
)

// CLILogger is the logger used by commands. It is a no-op until
// InitCLILogger or Configure runs.
var CLILogger = zap.NewNop()

// InitCLILogger installs a console logger at info level, or debug when
// verbose is set.
func InitCLILogger(name string, verbose bool) {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	logger, err := NewLogger(name, level, ProfileConsole, zapcore.Lock(os.Stderr))
	if err != nil {
		return
	}
	CLILogger = logger
}

// Configure replaces CLILogger according to level and profile.
func Configure(name string, level zapcore.Level, profile string) error {
	logger, err := NewLogger(name, level, profile, zapcore.Lock(os.Stderr))
	if err != nil {
		return err
	}
	_ = CLILogger.Sync()
	CLILogger = logger
	return nil
}

// NewLogger builds a logger writing to out.
//
// The structured profile emits one JSON object per line with RFC3339
// timestamps. The console profile is terse: level and message only.
func NewLogger(name string, level zapcore.Level, profile string, out zapcore.WriteSyncer) (*zap.Logger, error) {
	var encoder zapcore.Encoder
	switch profile {
	case ProfileStructured:
		cfg := zap.NewProductionEncoderConfig()
		cfg.EncodeTime = zapcore.RFC3339NanoTimeEncoder
		cfg.TimeKey = "ts"
		encoder = zapcore.NewJSONEncoder(cfg)
	case ProfileConsole, "":
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.TimeKey = ""
		cfg.CallerKey = ""
		cfg.NameKey = ""
		cfg.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(cfg)
	default:
		return nil, fmt.Errorf("unknown logging profile %q", profile)
	}

	core := zapcore.NewCore(encoder, out, zap.NewAtomicLevelAt(level))
	logger := zap.New(core)
	if name != "" {
		logger = logger.Named(name)
	}
	return logger, nil
}
