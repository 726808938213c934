// ABOUTME: Process-wide logger with printf-style helpers and component loggers.
// ABOUTME: Backed by zerolog, writing to a log file and optionally to stderr.

package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// LogFileName is the name of the log file created by InitLogger
const LogFileName = "audioswitch.log"

var (
	mu      sync.RWMutex
	logger  = zerolog.Nop()
	file    *os.File
	prefix  string
	console bool
	level   = zerolog.InfoLevel
)

// InitLogger opens (or creates) the log file inside dir and routes all
// package-level logging into it. It returns the full log file path.
func InitLogger(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create log directory: %w", err)
	}

	path := filepath.Join(dir, LogFileName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to open log file: %w", err)
	}

	mu.Lock()
	defer mu.Unlock()

	if file != nil {
		_ = file.Close()
	}
	file = f
	rebuildLocked()

	return path, nil
}

// SetOutput routes logging to w instead of the log file (tests, embedding).
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()

	if file != nil {
		_ = file.Close()
		file = nil
	}
	logger = zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// SetConsole mirrors log output to stderr in human-readable form
func SetConsole(enabled bool) {
	mu.Lock()
	defer mu.Unlock()

	console = enabled
	rebuildLocked()
}

// SetLevel sets the minimum level. Unknown names fall back to info.
func SetLevel(name string) {
	parsed, err := zerolog.ParseLevel(name)
	if err != nil || parsed == zerolog.NoLevel {
		parsed = zerolog.InfoLevel
	}

	mu.Lock()
	defer mu.Unlock()

	level = parsed
	logger = logger.Level(level)
}

// SetPrefix tags every subsequent line with p (e.g. "PID:1234")
func SetPrefix(p string) {
	mu.Lock()
	defer mu.Unlock()

	prefix = p
	rebuildLocked()
}

// Close flushes and closes the log file
func Close() {
	mu.Lock()
	defer mu.Unlock()

	if file != nil {
		_ = file.Sync()
		_ = file.Close()
		file = nil
	}
	logger = zerolog.Nop()
}

// Component returns a structured logger tagged with the component name
func Component(name string) zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger.With().Str("component", name).Logger()
}

// Debug logs a debug message
func Debug(format string, args ...interface{}) {
	current().Debug().Msgf(format, args...)
}

// Info logs an info message
func Info(format string, args ...interface{}) {
	current().Info().Msgf(format, args...)
}

// Warn logs a warning message
func Warn(format string, args ...interface{}) {
	current().Warn().Msgf(format, args...)
}

// Error logs an error message
func Error(format string, args ...interface{}) {
	current().Error().Msgf(format, args...)
}

func current() *zerolog.Logger {
	mu.RLock()
	l := logger
	mu.RUnlock()
	return &l
}

// rebuildLocked recreates the logger from the current sinks. mu must be held.
func rebuildLocked() {
	var writers []io.Writer
	if file != nil {
		writers = append(writers, file)
	}
	if console {
		writers = append(writers, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
	}

	if len(writers) == 0 {
		logger = zerolog.Nop()
		return
	}

	ctx := zerolog.New(zerolog.MultiLevelWriter(writers...)).Level(level).With().Timestamp()
	if prefix != "" {
		ctx = ctx.Str("prefix", prefix)
	}
	logger = ctx.Logger()
}
