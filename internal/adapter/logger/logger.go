package logger

import (
	"io"
	"log/slog"
	"os"

	"github.com/sm8ta/webike_workshop_service/internal/core/ports"
)

type LoggerAdapter struct {
	log *slog.Logger
}

var _ ports.LoggerPort = (*LoggerAdapter)(nil)

// NewLoggerAdapter logs JSON to stdout in production and human readable text elsewhere.
func NewLoggerAdapter(env string) *LoggerAdapter {
	return NewLoggerAdapterWithWriter(env, os.Stdout)
}

func NewLoggerAdapterWithWriter(env string, w io.Writer) *LoggerAdapter {
	var handler slog.Handler
	if env == "production" {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	return &LoggerAdapter{log: slog.New(handler)}
}

// NewNopLogger discards everything.
func NewNopLogger() *LoggerAdapter {
	return NewLoggerAdapterWithWriter("production", io.Discard)
}

func toAttrs(fields map[string]interface{}) []any {
	attrs := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		attrs = append(attrs, k, v)
	}
	return attrs
}

func (l *LoggerAdapter) Debug(msg string, fields map[string]interface{}) {
	l.log.Debug(msg, toAttrs(fields)...)
}

func (l *LoggerAdapter) Info(msg string, fields map[string]interface{}) {
	l.log.Info(msg, toAttrs(fields)...)
}

func (l *LoggerAdapter) Warn(msg string, fields map[string]interface{}) {
	l.log.Warn(msg, toAttrs(fields)...)
}

func (l *LoggerAdapter) Error(msg string, fields map[string]interface{}) {
	l.log.Error(msg, toAttrs(fields)...)
}
