package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"bioreport/internal/config"
)

type ctxKey int

const traceIDKey ctxKey = iota

// WithTraceID stores a trace identifier on the context so every log record
// emitted downstream carries it.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// GetTraceID returns the trace identifier stored on the context, or "".
func GetTraceID(ctx context.Context) string {
	id, _ := ctx.Value(traceIDKey).(string)
	return id
}

// InitializeLogger builds the application logger from config and installs it
// as the slog default. Call once at startup.
func InitializeLogger(cfg config.LoggingConfig) (*slog.Logger, error) {
	sink, err := logSink(cfg)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{
		Level:     logLevel(cfg.Level),
		AddSource: cfg.Development,
	}
	var h slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		h = slog.NewTextHandler(sink, opts)
	} else {
		h = slog.NewJSONHandler(sink, opts)
	}

	logger := slog.New(tracingHandler{h})
	slog.SetDefault(logger)
	return logger, nil
}

func logSink(cfg config.LoggingConfig) (io.Writer, error) {
	switch strings.ToLower(cfg.Output) {
	case "file":
		return appendFile(cfg.FilePath)
	case "both":
		f, err := appendFile(cfg.FilePath)
		if err != nil {
			return nil, err
		}
		return io.MultiWriter(os.Stdout, f), nil
	default:
		return os.Stdout, nil
	}
}

func appendFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating log directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	return f, nil
}

func logLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

// tracingHandler decorates every record with the context's trace_id, so
// handlers and services never have to attach it manually.
type tracingHandler struct {
	slog.Handler
}

func (t tracingHandler) Handle(ctx context.Context, r slog.Record) error {
	if id := GetTraceID(ctx); id != "" {
		r.AddAttrs(slog.String("trace_id", id))
	}
	return t.Handler.Handle(ctx, r)
}

func (t tracingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return tracingHandler{t.Handler.WithAttrs(attrs)}
}

func (t tracingHandler) WithGroup(name string) slog.Handler {
	return tracingHandler{t.Handler.WithGroup(name)}
}
