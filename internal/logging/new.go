package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	BackendSlog = "slog"
	BackendZap  = "zap"
)

// New builds a JSON logger writing to w with the given backend and level
// ("debug", "info", "warn", "error").
func New(w io.Writer, backend, level string) (Logger, error) {
	switch strings.ToLower(backend) {
	case "", BackendSlog:
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})
		return NewSlogLogger(slog.New(h)), nil

	case BackendZap:
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		encCfg := zap.NewProductionEncoderConfig()
		encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(w), lvl)
		return NewZapLogger(zap.New(core)), nil

	default:
		return nil, fmt.Errorf("unknown log backend %q", backend)
	}
}
