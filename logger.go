package malioc

import (
	"log/slog"

	"github.com/gogpu/malioc/internal/logging"
)

// SetLogger configures the logger for malioc and all its sub-packages.
// By default, malioc produces no log output. Call SetLogger to enable logging.
//
// SetLogger is safe for concurrent use: it stores the new logger atomically.
// Pass nil to disable logging (restore default silent behavior).
//
// Log levels used by malioc:
//   - [slog.LevelDebug]: per-job and per-shader diagnostics
//   - [slog.LevelInfo]: lifecycle events (compiler manager loaded, released)
//   - [slog.LevelWarn]: cross-compilation retries and rejected requests
//   - [slog.LevelError]: compiler manager load failures, unless silent
//
// Example:
//
//	malioc.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	logging.Set(l)
}

// Logger returns the current logger used by malioc.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return logging.Logger()
}
