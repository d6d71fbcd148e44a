package telemetry

import (
	"os"
	"sort"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is an injectable structured logger. Workflows receive one per
// request (via With) instead of reaching for process-wide state.
type Logger struct {
	z *zap.Logger
}

var defaultLogger = New()

// New builds a JSON logger writing to stdout.
func New() *Logger {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "ts"
	encoderConfig.MessageKey = "msg"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(os.Stdout),
		zapcore.InfoLevel,
	)
	return &Logger{z: zap.New(core)}
}

// With returns a child logger that carries the given fields on every line.
func (l *Logger) With(fields map[string]any) *Logger {
	return &Logger{z: l.z.With(toZapFields(fields)...)}
}

// Info writes an info-level log line with the given fields.
func (l *Logger) Info(msg string, fields map[string]any) {
	l.z.Info(msg, toZapFields(fields)...)
}

// Warn writes a warn-level log line with the given fields.
func (l *Logger) Warn(msg string, fields map[string]any) {
	l.z.Warn(msg, toZapFields(fields)...)
}

// Error writes an error-level log line with the given fields.
func (l *Logger) Error(msg string, fields map[string]any) {
	l.z.Error(msg, toZapFields(fields)...)
}

// Info writes an info-level log line via the process default logger.
func Info(msg string, fields map[string]any) {
	defaultLogger.Info(msg, fields)
}

// Warn writes a warn-level log line via the process default logger.
func Warn(msg string, fields map[string]any) {
	defaultLogger.Warn(msg, fields)
}

// Error writes an error-level log line via the process default logger.
func Error(msg string, fields map[string]any) {
	defaultLogger.Error(msg, fields)
}

// Default returns the process default logger.
func Default() *Logger {
	return defaultLogger
}

func toZapFields(fields map[string]any) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]zap.Field, 0, len(keys))
	for _, k := range keys {
		out = append(out, zap.Any(k, fields[k]))
	}
	return out
}
