// Package logger carries a logrus entry through context.Context so that
// request and command scoped fields (request id, skill id) follow a call
// down the stack. Retrieve it with G(ctx).
package logger

import (
	"context"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Output formats
const (
	FormatText = "text"
	FormatJSON = "json"
)

var (
	// G is shorthand for GetLogger
	G = GetLogger
	// L is the process-wide entry returned when ctx carries none
	L = logrus.NewEntry(newLogger())
)

type loggerKey struct{}

// WithLogger returns a copy of ctx carrying entry
func WithLogger(ctx context.Context, entry *logrus.Entry) context.Context {
	return context.WithValue(ctx, loggerKey{}, entry.WithContext(ctx))
}

// WithFields returns a copy of ctx whose logger carries fields in
// addition to the ones already attached
func WithFields(ctx context.Context, fields logrus.Fields) context.Context {
	return WithLogger(ctx, G(ctx).WithFields(fields))
}

// GetLogger returns the entry stored in ctx, or L bound to ctx
func GetLogger(ctx context.Context) *logrus.Entry {
	if entry, ok := ctx.Value(loggerKey{}).(*logrus.Entry); ok {
		return entry
	}
	return L.WithContext(ctx)
}

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.Formatter = formatter(FormatText)
	return l
}

func formatter(format string) logrus.Formatter {
	if format == FormatJSON {
		return &logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "logLevel",
				logrus.FieldKeyMsg:   "message",
			},
		}
	}
	return &logrus.TextFormatter{
		TimestampFormat: time.RFC3339Nano,
		FullTimestamp:   true,
	}
}

// Configure sets the level and format of the global logger. An empty
// level leaves the current one; an empty or "fmt" format means text.
func Configure(level, format string) error {
	switch format {
	case "", "fmt", FormatText, FormatJSON:
	default:
		return errors.Errorf("unsupported log format %q", format)
	}

	if level != "" {
		parsed, err := logrus.ParseLevel(level)
		if err != nil {
			return errors.Wrapf(err, "invalid log level %q", level)
		}
		L.Logger.SetLevel(parsed)
	}
	L.Logger.Formatter = formatter(format)
	return nil
}

// SetOutput redirects the global logger, mainly for tests
func SetOutput(w io.Writer) {
	L.Logger.SetOutput(w)
}
