// Package logger provides process-wide logging for policyshield.
// Messages are written through log/slog as text to stderr. Debug
// messages are only emitted when verbose mode is enabled via --verbose.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
	base              = newLogger(os.Stderr, false)
)

func newLogger(w io.Writer, v bool) *slog.Logger {
	level := slog.LevelInfo
	if v {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// SetVerbose enables or disables debug logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
	base = newLogger(output, v)
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	base = newLogger(w, verbose)
}

// Output returns the current output writer.
func Output() io.Writer {
	mu.RLock()
	defer mu.RUnlock()
	return output
}

// Logger returns the underlying structured logger for components
// that log key/value attributes, such as the HTTP middleware.
func Logger() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// Debug logs a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	Logger().Debug(fmt.Sprintf(format, args...))
}

// Section logs a section header if verbose mode is enabled.
func Section(name string) {
	Logger().Debug("=== " + name + " ===")
}

// Info logs an informational message.
func Info(format string, args ...any) {
	Logger().Info(fmt.Sprintf(format, args...))
}

// Warn logs a warning message.
func Warn(format string, args ...any) {
	Logger().Warn(fmt.Sprintf(format, args...))
}

// Error logs an error message.
func Error(format string, args ...any) {
	Logger().Error(fmt.Sprintf(format, args...))
}
