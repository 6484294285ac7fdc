// Package logger configures structured logging and crash recovery for tasklane.
package logger

import (
	"io"
	"log/slog"
	"os"
)

// Setup installs a text slog handler writing to w as the default logger.
// Debug records are emitted only when verbose is set. A nil w means stderr,
// which keeps stdout clean for the MCP stdio transport.
func Setup(verbose bool, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	l := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(l)
	return l
}
