// Package logging threads a charmbracelet/log logger through context.Context.
//
// depscan never consults a process-wide logger. The CLI builds one logger at
// startup, attaches it to the command context, and every component that logs
// (walker, detector, strategy chains, orchestrator) pulls it back out with
// FromContext.
//
//	logger := logging.New(os.Stderr, log.DebugLevel)
//	ctx = logging.WithLogger(ctx, logger)
//	...
//	logging.FromContext(ctx).Debug("strategy failed", "strategy", name, "err", err)
package logging

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
)

// TimeFormat is the timestamp layout used by loggers created with New
// (e.g., "14:32:01.45").
const TimeFormat = "15:04:05.00"

// New creates a logger with timestamp formatting that writes to w and filters
// messages below level.
func New(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      TimeFormat,
		Level:           level,
	})
}

// Discard returns a logger that drops everything. Tests use it to keep
// output quiet while still exercising log calls.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}

// ctxKey is the type for context keys used in this package.
type ctxKey int

const loggerKey ctxKey = 0

// WithLogger returns a new context with the given logger attached.
func WithLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext retrieves the logger from ctx.
// If no logger is attached, it returns log.Default().
func FromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok && l != nil {
		return l
	}
	return log.Default()
}

// With returns a context whose logger carries the additional key/value pairs.
func With(ctx context.Context, keyvals ...any) context.Context {
	return WithLogger(ctx, FromContext(ctx).With(keyvals...))
}
