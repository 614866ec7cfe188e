package http

import (
	"context"

	"go.uber.org/zap"

	"github.com/example/classroom-reserve/internal/logging"
)

func defaultLogger(logger *zap.Logger) *zap.Logger {
	if logger != nil {
		return logger
	}
	return zap.NewNop()
}

func handlerLogger(ctx context.Context, fallback *zap.Logger, handlerName, operation string, fields ...zap.Field) *zap.Logger {
	logger := logging.FromContext(ctx)
	if logger == nil {
		logger = fallback
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	logger = logger.With(zap.String("handler", handlerName))
	if operation != "" {
		logger = logger.With(zap.String("operation", operation))
	}
	if len(fields) > 0 {
		logger = logger.With(fields...)
	}
	return logger
}
