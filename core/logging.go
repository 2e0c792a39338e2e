package core

import (
	"context"

	"go.uber.org/zap"
)

type loggerKey struct{}

var baseLogger = newBaseLogger()

func newBaseLogger() *zap.SugaredLogger {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.DisableStacktrace = true
	logger, err := cfg.Build()
	if err != nil {
		// zap's production config only fails on bad output paths
		logger = zap.NewNop()
	}
	return logger.Sugar()
}

// SetDebugLogging switches the process-wide logger to development mode
// with debug output enabled.
func SetDebugLogging() {
	cfg := zap.NewDevelopmentConfig()
	logger, err := cfg.Build()
	if err != nil {
		return
	}
	baseLogger = logger.Sugar()
}

// WithDefaultLogger attaches a request-scoped logger to the context.
// reqID shows up on every log line produced through this context.
func WithDefaultLogger(parent context.Context, reqID string) context.Context {
	return context.WithValue(parent, loggerKey{}, baseLogger.With("req", reqID))
}

func fromContext(ctx context.Context) *zap.SugaredLogger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey{}).(*zap.SugaredLogger); ok {
			return l
		}
	}
	return baseLogger
}

// Infof logs at info level using the context's logger.
func Infof(ctx context.Context, tpl string, args ...any) {
	fromContext(ctx).Infof(tpl, args...)
}

// Errorf logs at error level using the context's logger.
func Errorf(ctx context.Context, tpl string, args ...any) {
	fromContext(ctx).Errorf(tpl, args...)
}

// Debugf logs at debug level using the context's logger.
func Debugf(ctx context.Context, tpl string, args ...any) {
	fromContext(ctx).Debugf(tpl, args...)
}
