// Package logging configures the application-wide structured loggers.
package logging

import (
	"io"
	"log/slog"
	"os"
	"sync"
)

var (
	mu                  sync.RWMutex
	structuredLogger    *slog.Logger
	humanReadableLogger *slog.Logger
)

const (
	LevelTrace = slog.Level(-8)
	LevelFatal = slog.Level(12)
)

// Add trace and fatal level names.
var levelNames = map[slog.Leveler]string{
	LevelTrace: "TRACE",
	LevelFatal: "FATAL",
}

func replaceLevelNames(groups []string, a slog.Attr) slog.Attr {
	if a.Key == slog.LevelKey {
		level := a.Value.Any().(slog.Level)
		levelLabel, exists := levelNames[level]
		if !exists {
			levelLabel = level.String()
		}
		a.Value = slog.StringValue(levelLabel)
	}
	return a
}

// Init initializes the logging system with structured and human-readable loggers.
// Structured logs are JSON on stdout, human-readable logs are text on stderr.
func Init() {
	SetOutput(os.Stdout, os.Stderr)
}

// SetLevel reconfigures both loggers with the given minimum level.
func SetLevel(level slog.Level) {
	mu.Lock()
	defer mu.Unlock()
	structuredLogger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replaceLevelNames,
	}))
	humanReadableLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replaceLevelNames,
	}))
	slog.SetDefault(structuredLogger)
}

// SetOutput redirects both loggers, mainly useful in tests.
func SetOutput(structuredOutput, humanReadableOutput io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	structuredLogger = slog.New(slog.NewJSONHandler(structuredOutput, &slog.HandlerOptions{
		Level:       slog.LevelDebug,
		ReplaceAttr: replaceLevelNames,
	}))
	humanReadableLogger = slog.New(slog.NewTextHandler(humanReadableOutput, &slog.HandlerOptions{
		Level:       slog.LevelInfo,
		ReplaceAttr: replaceLevelNames,
	}))
	slog.SetDefault(structuredLogger)
}

// Structured returns the JSON logger, initializing the system on first use.
func Structured() *slog.Logger {
	mu.RLock()
	logger := structuredLogger
	mu.RUnlock()
	if logger == nil {
		Init()
		mu.RLock()
		logger = structuredLogger
		mu.RUnlock()
	}
	return logger
}

// HumanReadable returns the text logger, initializing the system on first use.
func HumanReadable() *slog.Logger {
	mu.RLock()
	logger := humanReadableLogger
	mu.RUnlock()
	if logger == nil {
		Init()
		mu.RLock()
		logger = humanReadableLogger
		mu.RUnlock()
	}
	return logger
}

// ForService returns a structured logger scoped to a service name.
func ForService(serviceName string) *slog.Logger {
	return Structured().With("service", serviceName)
}
