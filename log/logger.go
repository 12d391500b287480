// Package log provides structured logging for numstore.
//
// Two logger variants are available:
//   - Logger: Non-sugared zap.Logger for codec/storage paths (structured fields)
//   - SugaredLogger: Printf-style logging for CLI surfaces
//
// Use Logger.Sugar() to obtain a SugaredLogger when needed.
package log

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger provides structured logging with component context.
type Logger struct {
	zap *zap.Logger
}

// SugaredLogger provides printf-style logging for CLI surfaces.
type SugaredLogger struct {
	sugar *zap.SugaredLogger
}

// Options configures a Logger.
type Options struct {
	// Level is the minimum level: debug, info, warn, error. Empty means info.
	Level string
	// Output is the destination. Nil means os.Stderr.
	Output io.Writer
}

// New creates a JSON logger.
// Returns an error if the level cannot be parsed.
func New(opts Options) (*Logger, error) {
	level := zapcore.InfoLevel
	if opts.Level != "" {
		parsed, err := zapcore.ParseLevel(opts.Level)
		if err != nil {
			return nil, err
		}
		level = parsed
	}
	w := opts.Output
	if w == nil {
		w = os.Stderr
	}
	return &Logger{zap: zap.New(newCore(w, level))}, nil
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{zap: zap.NewNop()}
}

func newCore(w io.Writer, level zapcore.Level) zapcore.Core {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:     "timestamp",
		LevelKey:    "level",
		NameKey:     "component",
		MessageKey:  "message",
		EncodeTime:  zapcore.RFC3339NanoTimeEncoder,
		EncodeLevel: zapcore.LowercaseLevelEncoder,
		EncodeName:  zapcore.FullNameEncoder,
	}
	return zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(w),
		level,
	)
}

// Named returns a child logger tagged with a component name.
func (l *Logger) Named(component string) *Logger {
	if l == nil {
		return Nop()
	}
	return &Logger{zap: l.zap.Named(component)}
}

// With returns a child logger with fixed context fields.
func (l *Logger) With(fields map[string]any) *Logger {
	if l == nil {
		return Nop()
	}
	zf := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		zf = append(zf, zap.Any(k, v))
	}
	return &Logger{zap: l.zap.With(zf...)}
}

// Debug logs a debug message.
func (l *Logger) Debug(message string, fields map[string]any) {
	l.log(zapcore.DebugLevel, message, fields)
}

// Info logs an info message.
func (l *Logger) Info(message string, fields map[string]any) {
	l.log(zapcore.InfoLevel, message, fields)
}

// Warn logs a warning message.
func (l *Logger) Warn(message string, fields map[string]any) {
	l.log(zapcore.WarnLevel, message, fields)
}

// Error logs an error message.
func (l *Logger) Error(message string, fields map[string]any) {
	l.log(zapcore.ErrorLevel, message, fields)
}

// log is nil-receiver safe so optional loggers need no guards at call sites.
func (l *Logger) log(level zapcore.Level, message string, fields map[string]any) {
	if l == nil {
		return
	}
	if ce := l.zap.Check(level, message); ce != nil {
		ce.Write(zap.Any("fields", fields))
	}
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	if l == nil {
		return nil
	}
	return l.zap.Sync()
}

// Sugar returns a SugaredLogger for printf-style logging.
func (l *Logger) Sugar() *SugaredLogger {
	if l == nil {
		return Nop().Sugar()
	}
	return &SugaredLogger{sugar: l.zap.Sugar()}
}

// Debugf logs a debug message with printf-style formatting.
func (s *SugaredLogger) Debugf(template string, args ...any) {
	s.sugar.Debugf(template, args...)
}

// Infof logs an info message with printf-style formatting.
func (s *SugaredLogger) Infof(template string, args ...any) {
	s.sugar.Infof(template, args...)
}

// Warnf logs a warning message with printf-style formatting.
func (s *SugaredLogger) Warnf(template string, args ...any) {
	s.sugar.Warnf(template, args...)
}

// Errorf logs an error message with printf-style formatting.
func (s *SugaredLogger) Errorf(template string, args ...any) {
	s.sugar.Errorf(template, args...)
}

// With returns a SugaredLogger with additional context fields.
func (s *SugaredLogger) With(args ...any) *SugaredLogger {
	return &SugaredLogger{sugar: s.sugar.With(args...)}
}
