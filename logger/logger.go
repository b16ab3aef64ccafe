// Package logger provides structured logging for aic.
//
// Logs are appended to a file under the state directory so that normal CLI
// output stays clean. Verbose mode mirrors log records to stderr with a
// human-friendly handler.
package logger

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/lmittmann/tint"
	"github.com/zhubert/aic/paths"
)

var (
	root        *slog.Logger
	levelVar    = new(slog.LevelVar)
	logFile     *os.File
	mu          sync.Mutex
	initDone    bool
	verboseMode bool
)

// DefaultLogPath returns the default log file path.
func DefaultLogPath() (string, error) {
	dir, err := paths.LogsDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "aic.log"), nil
}

// SetDebug enables or disables debug level logging.
func SetDebug(enabled bool) {
	if enabled {
		levelVar.Set(slog.LevelDebug)
	} else {
		levelVar.Set(slog.LevelInfo)
	}
}

// SetVerbose mirrors log records to stderr in addition to the log file.
// Must be called before the first log call to take effect.
func SetVerbose(enabled bool) {
	mu.Lock()
	defer mu.Unlock()
	verboseMode = enabled
	if enabled {
		levelVar.Set(slog.LevelDebug)
	}
}

// Init initializes the logger with a custom path. Must be called before
// logging. If not called, the default path is used on first log call.
func Init(path string) error {
	mu.Lock()
	defer mu.Unlock()

	if initDone {
		return nil
	}
	return initLocked(path)
}

// initLocked opens the log file and builds the handler chain.
// Caller must hold mu.
func initLocked(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory %s: %w", dir, err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	logFile = f

	handler := slog.Handler(slog.NewTextHandler(f, &slog.HandlerOptions{Level: levelVar}))
	if verboseMode {
		console := tint.NewHandler(os.Stderr, &tint.Options{
			Level:      levelVar,
			TimeFormat: time.Kitchen,
		})
		handler = fanoutHandler{handler, console}
	}
	root = slog.New(handler)
	initDone = true

	root.Debug("logger initialized", "path", path)
	return nil
}

// ensureInit initializes the logger with default settings if needed.
// Caller must hold mu.
func ensureInit() {
	if initDone {
		return
	}

	defaultPath, err := DefaultLogPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to get default log path: %v\n", err)
		return
	}
	if err := initLocked(defaultPath); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
}

// Get returns the root logger instance.
func Get() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()

	ensureInit()

	if root == nil {
		return slog.Default()
	}
	return root
}

// WithComponent returns a logger with the component name attached.
//
// Example:
//
//	log := logger.WithComponent("git")
//	log.Info("staged diff collected", "bytes", len(diff))
//	// Output: level=INFO msg="staged diff collected" component=git bytes=1421
func WithComponent(component string) *slog.Logger {
	mu.Lock()
	defer mu.Unlock()

	ensureInit()

	if root == nil {
		return slog.Default().With("component", component)
	}
	return root.With("component", component)
}

// Close closes the log file.
func Close() {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
	root = nil
}

// Reset resets the logger state, allowing reinitialization.
// This is primarily for testing purposes.
func Reset() {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
	initDone = false
	verboseMode = false
	root = nil
	levelVar = new(slog.LevelVar)
}

// ClearLogs removes the aic log file. Returns the number of files removed.
func ClearLogs() (int, error) {
	defaultPath, err := DefaultLogPath()
	if err != nil {
		return 0, fmt.Errorf("failed to get default log path: %w", err)
	}

	if err := os.Remove(defaultPath); err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	return 1, nil
}

// fanoutHandler duplicates records to every wrapped handler.
type fanoutHandler []slog.Handler

func (h fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, sub := range h {
		if sub.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h fanoutHandler) Handle(ctx context.Context, r slog.Record) error {
	var firstErr error
	for _, sub := range h {
		if !sub.Enabled(ctx, r.Level) {
			continue
		}
		if err := sub.Handle(ctx, r.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (h fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	subs := make(fanoutHandler, len(h))
	for i, sub := range h {
		subs[i] = sub.WithAttrs(attrs)
	}
	return subs
}

func (h fanoutHandler) WithGroup(name string) slog.Handler {
	subs := make(fanoutHandler, len(h))
	for i, sub := range h {
		subs[i] = sub.WithGroup(name)
	}
	return subs
}
