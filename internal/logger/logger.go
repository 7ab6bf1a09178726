package logger

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
)

func New() *zap.SugaredLogger {
	var (
		logger *zap.Logger
		err    error
	)
	opts := []zap.Option{
		zap.AddStacktrace(zap.ErrorLevel),
	}

	if strings.EqualFold(os.Getenv("ALPHA_ENV"), "dev") {
		logger, err = zap.NewDevelopment(opts...)
	} else {
		opts = append(opts, zap.Fields(zap.String("ALPHA_ENV", os.Getenv("ALPHA_ENV"))))
		logger, err = zap.NewProduction(opts...)
	}

	if err != nil {
		panic(fmt.Errorf("failed to initialize logger: %w", err))
	}

	return logger.Sugar()
}

type contextKey struct{}

func WithContext(ctx context.Context, logger *zap.SugaredLogger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext returns the request scoped logger, falling back to the
// global one
func FromContext(ctx context.Context) *zap.SugaredLogger {
	logger, ok := ctx.Value(contextKey{}).(*zap.SugaredLogger)
	if !ok || logger == nil {
		return zap.S()
	}
	return logger
}

func init() {
	logger := New()
	zap.ReplaceGlobals(logger.Desugar())
}
