package matext

import (
	"log/slog"

	"github.com/gogpu/matext/internal/logging"
)

// SetLogger configures the logger for matext and all its sub-packages.
// By default, matext produces no log output. Call SetLogger to enable logging.
//
// SetLogger is safe for concurrent use: it stores the new logger atomically.
// Pass nil to disable logging (restore default silent behavior).
//
// Log levels used by matext:
//   - [slog.LevelDebug]: per-entity material swaps, load requests
//   - [slog.LevelInfo]: load ready, augmentation pass finished
//   - [slog.LevelWarn]: failed loads, dangling base material references
//
// Example:
//
//	matext.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	logging.Set(l)
}

// Logger returns the current logger used by matext.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return logging.Logger()
}
