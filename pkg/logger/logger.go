package logger

import (
	"context"

	"go.uber.org/zap"
)

type Logger interface {
	Debug(ctx context.Context, args ...any)
	Debugf(ctx context.Context, template string, args ...any)
	Info(ctx context.Context, args ...any)
	Infof(ctx context.Context, template string, args ...any)
	Warn(ctx context.Context, args ...any)
	Warnf(ctx context.Context, template string, args ...any)
	Error(ctx context.Context, args ...any)
	Errorf(ctx context.Context, template string, args ...any)
	Fatal(ctx context.Context, args ...any)
	Fatalf(ctx context.Context, template string, args ...any)
	Sync() error
}

type ZapConfig struct {
	Level    string
	Mode     string
	Encoding string
}

func InitializeZapLogger(cfg ZapConfig) Logger {
	l := zapLogger{
		cfg: &cfg,
	}
	l.init()
	return &l
}

func InitializeTestZapLogger() Logger {
	l := zapLogger{
		cfg: &ZapConfig{
			Level:    "debug",
			Mode:     "testing",
			Encoding: "console",
		},
	}
	l.init()
	return &l
}

// loggerKey carries a request-scoped logger in the context. The ctx-first
// Logger methods prefer it over the process-wide logger when present.
type loggerKey struct{}

// ContextWithFields derives a request-scoped logger carrying the given
// fields and stores it in the context.
func ContextWithFields(ctx context.Context, l Logger, keysAndValues ...any) context.Context {
	zl, ok := l.(*zapLogger)
	if !ok {
		return ctx
	}
	return context.WithValue(ctx, loggerKey{}, zl.sugar.With(keysAndValues...))
}

func fromContext(ctx context.Context, fallback *zap.SugaredLogger) *zap.SugaredLogger {
	if ctx == nil {
		return fallback
	}
	if scoped, _ := ctx.Value(loggerKey{}).(*zap.SugaredLogger); scoped != nil {
		return scoped
	}
	return fallback
}
