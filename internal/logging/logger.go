package logging

import (
	"io"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level represents log severity
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l Level) zapLevel() zapcore.Level {
	switch l {
	case DEBUG:
		return zapcore.DebugLevel
	case WARN:
		return zapcore.WarnLevel
	case ERROR:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// ParseLevel converts a string to a Level, defaulting to INFO.
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return DEBUG
	case "info":
		return INFO
	case "warn":
		return WARN
	case "error":
		return ERROR
	default:
		return INFO
	}
}

// Logger is a component-scoped logger with printf-style methods and
// key/value context, backed by zap.
type Logger struct {
	base  *zap.Logger
	sugar *zap.SugaredLogger
}

// NewLogger creates a logger for a component writing console-formatted
// entries to output (stdout when nil).
func NewLogger(component string, level Level, output io.Writer) *Logger {
	if output == nil {
		output = os.Stdout
	}
	core := zapcore.NewCore(newEncoder(), zapcore.AddSync(output), level.zapLevel())
	return New(component, zap.New(core))
}

// New wraps an existing zap logger, naming it after component.
func New(component string, base *zap.Logger) *Logger {
	if base == nil {
		base = zap.NewNop()
	}
	named := base.Named(component).WithOptions(zap.AddCaller(), zap.AddCallerSkip(1))
	return &Logger{base: named, sugar: named.Sugar()}
}

// Named returns a logger for a sub-component sharing the same cores.
func (l *Logger) Named(component string) *Logger {
	named := l.base.Named(component)
	return &Logger{base: named, sugar: named.Sugar()}
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	l.sugar.Debugf(format, args...)
}

// Info logs an info message
func (l *Logger) Info(format string, args ...interface{}) {
	l.sugar.Infof(format, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	l.sugar.Warnf(format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.sugar.Errorf(format, args...)
}

// WithContext returns a new Logger with an added context field
func (l *Logger) WithContext(key string, value interface{}) *Logger {
	s := l.sugar.With(key, value)
	return &Logger{base: s.Desugar(), sugar: s}
}

// WithFields returns a new Logger with multiple context fields.
// Keys are added in sorted order so output is stable.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	args := make([]interface{}, 0, len(fields)*2)
	for _, k := range keys {
		args = append(args, k, fields[k])
	}
	s := l.sugar.With(args...)
	return &Logger{base: s.Desugar(), sugar: s}
}

// Zap exposes the underlying zap logger for libraries that take one.
// The returned logger does not carry the wrapper's caller skip.
func (l *Logger) Zap() *zap.Logger {
	return l.base.WithOptions(zap.AddCallerSkip(-1))
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	return l.base.Sync()
}

func newEncoder() zapcore.Encoder {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.EncodeCaller = zapcore.ShortCallerEncoder
	cfg.ConsoleSeparator = " "
	return zapcore.NewConsoleEncoder(cfg)
}

// Options configures Build.
type Options struct {
	Level      Level
	Console    io.Writer // defaults to stdout
	FilePath   string    // empty disables file logging
	MaxSizeMB  int
	MaxBackups int
}

// Build assembles the process-wide zap logger: console entries at
// opts.Level and, when FilePath is set, every entry (DEBUG and up) to a
// rotated file. The returned closer flushes and closes the file.
func Build(opts Options) (*zap.Logger, io.Closer, error) {
	console := opts.Console
	if console == nil {
		console = os.Stdout
	}

	cores := []zapcore.Core{
		zapcore.NewCore(newEncoder(), zapcore.AddSync(console), opts.Level.zapLevel()),
	}

	var closer io.Closer = nopCloser{}
	if opts.FilePath != "" {
		fw, err := NewFileWriter(opts.FilePath, opts.MaxSizeMB, opts.MaxBackups)
		if err != nil {
			return nil, nil, err
		}
		cores = append(cores, zapcore.NewCore(newEncoder(), fw, zapcore.DebugLevel))
		closer = fw
	}

	return zap.New(zapcore.NewTee(cores...)), closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
