// Package logger builds the zap logger and correlates entries with traces.
package logger

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type Options struct {
	Production bool
	Level      string
}

type LogMiddleware struct {
	logger *zap.Logger
}

// Connect builds a JSON logger in production and a console logger otherwise.
func Connect(opts Options) (*LogMiddleware, error) {
	level := zap.NewAtomicLevel()
	if opts.Level != "" {
		parsed, err := zap.ParseAtomicLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		level = parsed
	}

	cfg := zap.NewDevelopmentConfig()
	if opts.Production {
		cfg = zap.NewProductionConfig()
	}
	cfg.Level = level

	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	if opts.Production {
		zap.ReplaceGlobals(logger)
		logger.Info("[Logger] Starting Logger with Prod Config")
	}
	return &LogMiddleware{logger: logger}, nil
}

// Wrap adapts an existing zap logger, typically a test logger.
func Wrap(logger *zap.Logger) *LogMiddleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogMiddleware{logger: logger}
}

// Base returns the logger without trace fields.
func (l *LogMiddleware) Base() *zap.Logger {
	return l.logger
}

// Logger returns the logger annotated with the trace and span ids of ctx.
func (l *LogMiddleware) Logger(ctx context.Context) *zap.Logger {
	spanContext := trace.SpanContextFromContext(ctx)
	if !spanContext.IsValid() {
		return l.logger
	}

	return l.logger.With(
		zap.String("trace_id", spanContext.TraceID().String()),
		zap.String("span_id", spanContext.SpanID().String()),
	)
}

func (l *LogMiddleware) Sync() error {
	return l.logger.Sync()
}
