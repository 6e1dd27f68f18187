package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

type ctxKey struct{}

var log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Timestamp().Logger()

// InitLogging writes logs to stdout and, when path is set, appends JSON lines to path.
func InitLogging(path string) {
	writers := []io.Writer{zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}}
	if path != "" {
		file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open log file %s: %v\n", path, err)
		} else {
			writers = append(writers, file)
		}
	}
	log = zerolog.New(zerolog.MultiLevelWriter(writers...)).With().Timestamp().Logger()
}

// SetOutput replaces the log writer, mainly for tests and the CLI.
func SetOutput(w io.Writer) {
	log = zerolog.New(w).With().Timestamp().Logger()
}

// SetLevel sets the global minimum level, e.g. "debug" or "warn".
func SetLevel(level string) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(lvl)
	return nil
}

// WithRequestID stores the request id logged with every entry of ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// RequestID returns the request id stored in ctx.
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

func InfoLog(ctx context.Context, format string, args ...interface{}) {
	write(ctx, log.Info(), format, args...)
}

func WarnLog(ctx context.Context, format string, args ...interface{}) {
	write(ctx, log.Warn(), format, args...)
}

func ErrorLog(ctx context.Context, format string, args ...interface{}) {
	write(ctx, log.Error(), format, args...)
}

func DebugLog(ctx context.Context, format string, args ...interface{}) {
	write(ctx, log.Debug(), format, args...)
}

func write(ctx context.Context, event *zerolog.Event, format string, args ...interface{}) {
	if id := RequestID(ctx); id != "" {
		event = event.Str("request_id", id)
	}
	event.Msgf(format, args...)
}
