// Package logging builds the process logger: a console handler (tint for
// humans, JSON for machines) optionally mirrored as JSON to Logstash.
package logging

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

type Options struct {
	Level        string
	Format       string
	LogstashAddr string
	Output       io.Writer
}

// New returns the configured logger and a close func releasing the Logstash
// connection, if any.
func New(opts Options) (*slog.Logger, func() error, error) {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	level := ParseLevel(opts.Level)

	var console slog.Handler
	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "", "text", "tint":
		console = tint.NewHandler(out, &tint.Options{Level: level, TimeFormat: time.Kitchen})
	case "json":
		console = slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level})
	default:
		return nil, nil, errors.New("logging: unknown format " + opts.Format)
	}

	if strings.TrimSpace(opts.LogstashAddr) == "" {
		return slog.New(console), func() error { return nil }, nil
	}

	ls, err := NewLogstashWriter(opts.LogstashAddr)
	if err != nil {
		return nil, nil, err
	}
	shipper := slog.NewJSONHandler(ls, &slog.HandlerOptions{Level: level})
	return slog.New(fanout{console, shipper}), ls.Close, nil
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Discard returns a logger that drops everything; handy in tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if h.Enabled(ctx, r.Level) {
			if err := h.Handle(ctx, r.Clone()); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
