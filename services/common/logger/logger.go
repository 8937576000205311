// Package logger holds the process-wide zap logger and the request ID
// plumbing that ties log lines to a single HTTP request.
package logger

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log is the process logger. It discards everything until Initialize runs.
var Log = zap.NewNop()

// RequestIDKey is the gin context key and log field holding the request ID.
const RequestIDKey = "request_id"

// RequestIDHeader is read from and echoed on every response.
const RequestIDHeader = "X-Request-ID"

// New builds a JSON logger for production and a console logger otherwise.
// LOG_LEVEL (debug, info, warn, error) overrides the environment default.
func New(env, service string) (*zap.Logger, error) {
	var cfg zap.Config
	if env == "production" {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		lvl, err := zapcore.ParseLevel(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", raw, err)
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	l, err := cfg.Build(zap.Fields(zap.String("service", service)))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return l, nil
}

// Initialize builds the logger and installs it as Log and as the zap global.
func Initialize(env, service string) (*zap.Logger, error) {
	l, err := New(env, service)
	if err != nil {
		return nil, err
	}
	Log = l
	zap.ReplaceGlobals(l)
	return l, nil
}

// RequestID propagates an incoming X-Request-ID or assigns a fresh UUID. The
// ID is stored on both the gin context and the request context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(RequestIDKey, id)
		c.Request = c.Request.WithContext(WithContext(c.Request.Context(), id))
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// FromContext returns Log tagged with the request ID carried by ctx.
func FromContext(ctx context.Context) *zap.Logger {
	return Log.With(zap.String(RequestIDKey, RequestIDFrom(ctx)))
}

func Error(ctx context.Context, msg string, err error, fields ...zap.Field) {
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	FromContext(ctx).Error(msg, fields...)
}

func Info(ctx context.Context, msg string, fields ...zap.Field) {
	FromContext(ctx).Info(msg, fields...)
}

func Warn(ctx context.Context, msg string, fields ...zap.Field) {
	FromContext(ctx).Warn(msg, fields...)
}

func Debug(ctx context.Context, msg string, fields ...zap.Field) {
	FromContext(ctx).Debug(msg, fields...)
}

type ctxKey struct{}

func WithContext(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, requestID)
}

// RequestIDFrom accepts a *gin.Context or a plain context. It returns
// "unknown" when no ID was assigned.
func RequestIDFrom(ctx context.Context) string {
	if gc, ok := ctx.(*gin.Context); ok {
		if id := gc.GetString(RequestIDKey); id != "" {
			return id
		}
		if gc.Request == nil {
			return "unknown"
		}
		ctx = gc.Request.Context()
	}
	if ctx != nil {
		if id, ok := ctx.Value(ctxKey{}).(string); ok {
			return id
		}
	}
	return "unknown"
}
