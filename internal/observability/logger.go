// Package observability holds the process-wide loggers for pplx.
package observability

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// CLILogger is used by CLI commands. It writes human-readable console
// output to stderr so stdout stays clean for command results.
var CLILogger *zap.Logger = zap.NewNop()

// InitCLILogger initializes the CLI logger. The verbose flag lowers the
// level to debug regardless of the configured level.
func InitCLILogger(serviceName, level string, verbose bool) {
	zapLevel := parseLogLevel(level)
	if verbose {
		zapLevel = zapcore.DebugLevel
	}

	encoderCfg := zap.NewDevelopmentEncoderConfig()
	encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder

	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         "console",
		EncoderConfig:    encoderCfg,
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := cfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	CLILogger = logger.Named(serviceName)
}

// Sync flushes buffered log entries. Safe to call on a nop logger.
func Sync() {
	if CLILogger != nil {
		_ = CLILogger.Sync()
	}
}

func parseLogLevel(levelStr string) zapcore.Level {
	switch levelStr {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
