// Package logger builds the shell's structured application log.
package logger

import (
	"io"
	"log/slog"

	slogmulti "github.com/samber/slog-multi"
)

// Options selects where log records go.
type Options struct {
	// File receives JSON records at Level. Nil disables the file log.
	File  io.Writer
	Level slog.Leveler

	// Debug receives human readable records at debug level. Nil disables
	// it.
	Debug io.Writer
}

// New creates a logger fanning records out to every configured sink. With
// no sinks the logger discards everything.
func New(opts Options) *slog.Logger {
	var handlers []slog.Handler

	if opts.File != nil {
		level := opts.Level
		if level == nil {
			level = slog.LevelInfo
		}
		handlers = append(handlers, slog.NewJSONHandler(opts.File, &slog.HandlerOptions{
			Level: level,
		}))
	}

	if opts.Debug != nil {
		handlers = append(handlers, slog.NewTextHandler(opts.Debug, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}

	switch len(handlers) {
	case 0:
		return Discard()
	case 1:
		return slog.New(handlers[0])
	}
	return slog.New(slogmulti.Fanout(handlers...))
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
