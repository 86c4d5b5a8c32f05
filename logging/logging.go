// Package logging owns the process-wide zap logger setup.
package logging

import (
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu      sync.Mutex
	logger  *zap.Logger
	logFile *os.File
)

// Setup builds the shared logger. Debug enables debug-level output;
// logFilePath, when non-empty, mirrors every entry into the given file.
// Calling Setup twice is a no-op.
func Setup(debug bool, logFilePath string) (*zap.Logger, error) {
	mu.Lock()
	defer mu.Unlock()

	if logger != nil {
		return logger, nil
	}

	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	encoder := zapcore.NewConsoleEncoder(encCfg)

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), level),
	}

	if logFilePath != "" {
		f, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
		if err != nil {
			return nil, fmt.Errorf("cannot open log file %s: %w", logFilePath, err)
		}
		logFile = f
		cores = append(cores, zapcore.NewCore(encoder, zapcore.Lock(f), level))
	}

	logger = zap.New(zapcore.NewTee(cores...))
	return logger, nil
}

// Logger returns the shared logger, or a no-op logger before Setup ran.
func Logger() *zap.Logger {
	mu.Lock()
	defer mu.Unlock()

	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

// Close flushes the logger and releases the log file, if any.
func Close() {
	mu.Lock()
	defer mu.Unlock()

	if logger != nil {
		logger.Sync()
		logger = nil
	}
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}
