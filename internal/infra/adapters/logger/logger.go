// logger is an slog.Logger adapter to store an slog.Logger (using
// logger.WithLogger) into a context.Context and later retrieve it
// (using logger.FromContext). The default logger is
// github.com/charmbracelet/log.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/term"
)

type contextKey struct{}

var loggerKey = &contextKey{}

// WithLogger returns a context with l as slog.Logger based off the
// ctx context. Retrieve the logger using FromContext.
func WithLogger(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// WithDefaultLogger returns a context with DefaultLogger set as the
// slog.Logger based off the ctx context. Retrieve the logger using
// FromContext.
func WithDefaultLogger(ctx context.Context) context.Context {
	return WithLogger(ctx, DefaultLogger())
}

// FromContext retrieves an slog.Logger saved by WithLogger from
// ctx. If there is not such logger in the context,
// logger.DefaultLogger() is returned ensuring this function will
// always return a valid slog.Logger.
func FromContext(ctx context.Context) *slog.Logger {
	l, ok := ctx.Value(loggerKey).(*slog.Logger)
	if !ok {
		return DefaultLogger()
	}
	return l
}

// DefaultLogger returns the default logger for this adapter package
// which utilizes github.com/charmbracelet/log.
func DefaultLogger() *slog.Logger {
	return New(os.Stderr, "", "")
}

// New returns a charmbracelet/log backed slog.Logger writing to w.
// level is one of debug, info, warn or error (info if empty or
// unknown). format is text, json or logfmt. An empty format selects
// text when w is a terminal and json otherwise.
func New(w io.Writer, level, format string) *slog.Logger {
	return slog.New(log.NewWithOptions(w, Options(w, level, format)))
}

func Options(w io.Writer, level, format string) log.Options {
	opts := log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Level:           log.InfoLevel,
		Formatter:       log.TextFormatter,
	}
	if lvl, err := log.ParseLevel(strings.TrimSpace(level)); err == nil && level != "" {
		opts.Level = lvl
	}
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		opts.Formatter = log.JSONFormatter
	case "logfmt":
		opts.Formatter = log.LogfmtFormatter
	case "text":
	default:
		if !isTerminal(w) {
			opts.Formatter = log.JSONFormatter
		}
	}
	if opts.Formatter != log.TextFormatter {
		opts.TimeFormat = time.RFC3339
	}
	return opts
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
