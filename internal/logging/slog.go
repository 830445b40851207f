package logging

import (
	"context"
	"log/slog"

	"github.com/go-chi/chi/v5/middleware"
)

// SlogLogger adapts *slog.Logger to Logger. Records logged with a request
// context carry its chi request id.
type SlogLogger struct {
	l *slog.Logger
}

func NewSlogLogger(l *slog.Logger) *SlogLogger {
	return &SlogLogger{l: l}
}

func (s *SlogLogger) log(ctx context.Context, level slog.Level, msg string, args []any) {
	if ctx == nil {
		ctx = context.Background()
	}
	s.l.Log(ctx, level, msg, withRequestID(ctx, args)...)
}

func (s *SlogLogger) Debug(ctx context.Context, msg string, args ...any) {
	s.log(ctx, slog.LevelDebug, msg, args)
}

func (s *SlogLogger) Info(ctx context.Context, msg string, args ...any) {
	s.log(ctx, slog.LevelInfo, msg, args)
}

func (s *SlogLogger) Warn(ctx context.Context, msg string, args ...any) {
	s.log(ctx, slog.LevelWarn, msg, args)
}

func (s *SlogLogger) Error(ctx context.Context, msg string, args ...any) {
	s.log(ctx, slog.LevelError, msg, args)
}

func (s *SlogLogger) With(args ...any) Logger {
	return &SlogLogger{l: s.l.With(args...)}
}

// withRequestID appends the request id stored by chi's RequestID
// middleware, if any.
func withRequestID(ctx context.Context, args []any) []any {
	if ctx == nil {
		return args
	}
	if id := middleware.GetReqID(ctx); id != "" {
		return append(args[:len(args):len(args)], "request_id", id)
	}
	return args
}
