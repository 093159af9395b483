// Package logging sets up structured slog loggers with file rotation.
package logging

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/lawglot/lawglot-go/internal/conf"
)

var (
	structuredLogger    *slog.Logger
	humanReadableLogger *slog.Logger
	initOnce            sync.Once
)

// Init initializes the logging system with structured and human-readable loggers.
// JSON goes to stdout for log shippers, text goes to stderr for operators.
func Init() {
	initOnce.Do(func() {
		level := slog.LevelInfo
		if settings := conf.GetSettings(); settings != nil && settings.Debug {
			level = slog.LevelDebug
		}

		structuredLogger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		}))
		humanReadableLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		}))

		slog.SetDefault(structuredLogger)
	})
}

// StructuredLogger returns the JSON logger, initializing logging if needed.
func StructuredLogger() *slog.Logger {
	Init()
	return structuredLogger
}

// HumanLogger returns the text logger, initializing logging if needed.
func HumanLogger() *slog.Logger {
	Init()
	return humanReadableLogger
}

// NewFileLogger creates a slog.Logger writing JSON logs to filePath using
// lumberjack for rotation, tagging every record with a service attribute.
// It returns the logger, a function to close the underlying writer, and an
// error if setup fails.
func NewFileLogger(filePath, serviceName string, level slog.Leveler) (*slog.Logger, func() error, error) {
	// lumberjack doesn't create directories
	logDir := filepath.Dir(filePath)
	if logDir != "." {
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory %s: %w", logDir, err)
		}
	}

	maxSizeMB := 100
	maxBackups := 3
	maxAge := 28 // days
	if settings := conf.GetSettings(); settings != nil {
		if settings.Main.Log.MaxSizeMB > 0 {
			maxSizeMB = settings.Main.Log.MaxSizeMB
		}
		if settings.Main.Log.MaxBackups > 0 {
			maxBackups = settings.Main.Log.MaxBackups
		}
		if settings.Main.Log.MaxAgeDays > 0 {
			maxAge = settings.Main.Log.MaxAgeDays
		}
	}

	logWriter := &lumberjack.Logger{
		Filename:   filePath,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAge,
	}

	handler := slog.NewJSONHandler(logWriter, &slog.HandlerOptions{Level: level})
	logger := slog.New(handler).With("service", serviceName)

	return logger, logWriter.Close, nil
}
