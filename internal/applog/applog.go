// Package applog initialises the global slog logger for the application.
// Call Init once at startup; all other packages use log/slog directly.
package applog

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
)

var debugMode atomic.Bool

// Init sets up the global slog logger.
// It writes structured text logs to both stdout and a temporary log file.
// If debug is true, the minimum log level is Debug; otherwise Info.
func Init(debug bool) {
	initWith(debug, true)
}

// InitFileOnly is Init without the stdout copy, for front-ends that own the
// terminal.
func InitFileOnly(debug bool) {
	initWith(debug, false)
}

func initWith(debug, stdout bool) {
	var writers []io.Writer
	if stdout {
		writers = append(writers, os.Stdout)
	}
	if f, err := os.OpenFile(LogPath(), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644); err == nil {
		writers = append(writers, f)
	}
	if len(writers) == 0 {
		writers = append(writers, io.Discard)
	}
	SetOutput(io.MultiWriter(writers...), debug)
}

// SetOutput installs a text handler on w as the global logger.
func SetOutput(w io.Writer, debug bool) {
	debugMode.Store(debug)

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(h))
}

// IsDebug reports whether debug mode is active.
func IsDebug() bool {
	return debugMode.Load()
}

// LogPath is the shared log file in the temp directory.
func LogPath() string {
	return filepath.Join(os.TempDir(), "gamelog-lines.log")
}
