// Package logger provides structured logging for the console backend,
// backed by zap. The request ID placed in the context by the HTTP layer is
// attached to every entry automatically.
package logger

import (
	"context"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/snowch/vast-sp-console/pkg/constants"
)

// Field re-exports zap's structured field type.
type Field = zap.Field

// Field constructors, re-exported so callers need not import zap directly.
var (
	String   = zap.String
	Int      = zap.Int
	Int64    = zap.Int64
	Bool     = zap.Bool
	Duration = zap.Duration
	Time     = zap.Time
	Any      = zap.Any
	Err      = zap.Error
)

// Logger is the logging interface used throughout the service.
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...Field)
	Info(ctx context.Context, msg string, fields ...Field)
	Warn(ctx context.Context, msg string, fields ...Field)
	Error(ctx context.Context, msg string, err error, fields ...Field)
	Fatal(ctx context.Context, msg string, err error, fields ...Field)

	// With returns a logger that includes the given fields on every entry.
	With(fields ...Field) Logger

	// SetLevel changes the minimum level at runtime. Unknown level strings
	// are ignored.
	SetLevel(level string)
}

type zapLogger struct {
	zl    *zap.Logger
	level zap.AtomicLevel
}

// New creates a production JSON logger at the given level.
func New(level string) (Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	atomic := zap.NewAtomicLevelAt(lvl)

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(os.Stdout),
		atomic,
	)

	return &zapLogger{
		zl:    zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)),
		level: atomic,
	}, nil
}

func (l *zapLogger) Debug(ctx context.Context, msg string, fields ...Field) {
	l.zl.Debug(msg, l.withContext(ctx, fields)...)
}

func (l *zapLogger) Info(ctx context.Context, msg string, fields ...Field) {
	l.zl.Info(msg, l.withContext(ctx, fields)...)
}

func (l *zapLogger) Warn(ctx context.Context, msg string, fields ...Field) {
	l.zl.Warn(msg, l.withContext(ctx, fields)...)
}

func (l *zapLogger) Error(ctx context.Context, msg string, err error, fields ...Field) {
	l.zl.Error(msg, l.withContext(ctx, append(fields, zap.Error(err)))...)
}

func (l *zapLogger) Fatal(ctx context.Context, msg string, err error, fields ...Field) {
	l.zl.Fatal(msg, l.withContext(ctx, append(fields, zap.Error(err)))...)
}

func (l *zapLogger) With(fields ...Field) Logger {
	return &zapLogger{zl: l.zl.With(fields...), level: l.level}
}

func (l *zapLogger) SetLevel(level string) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return
	}
	l.level.SetLevel(lvl)
}

func (l *zapLogger) withContext(ctx context.Context, fields []Field) []Field {
	if ctx == nil {
		return fields
	}
	if requestID, ok := ctx.Value(constants.ContextKeyRequestID).(string); ok && requestID != "" {
		fields = append(fields, zap.String("request_id", requestID))
	}
	return fields
}
