package logging

import (
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Fields holds structured key/value pairs attached to a log entry
type Fields map[string]any

// Logger is the structured logger used across pcmscope
type Logger interface {
	Debug(msg string, fields ...Fields)
	Info(msg string, fields ...Fields)
	Warn(msg string, fields ...Fields)
	Error(err error, msg string, fields ...Fields)
	WithFields(fields Fields) Logger
}

// Options configures the process-wide logger
type Options struct {
	Level       string   // debug, info, warn, error
	OutputPaths []string // zap sinks, e.g. "stderr" or a file path
	Development bool
}

var (
	mu          sync.RWMutex
	level       = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	root        *zap.Logger
	defaultOpts = Options{Level: "info", OutputPaths: []string{"stderr"}}
)

func init() {
	l, err := build(defaultOpts)
	if err != nil {
		l = zap.NewNop()
	}
	root = l
}

// Configure rebuilds the root logger. Loggers created before the call keep
// writing to their original sinks.
func Configure(opts Options) error {
	if len(opts.OutputPaths) == 0 {
		opts.OutputPaths = defaultOpts.OutputPaths
	}
	if opts.Level != "" {
		if err := SetLevel(opts.Level); err != nil {
			return err
		}
	}

	l, err := build(opts)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}

	mu.Lock()
	old := root
	root = l
	mu.Unlock()

	_ = old.Sync()
	return nil
}

func build(opts Options) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if opts.Development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = level
	cfg.OutputPaths = opts.OutputPaths
	cfg.ErrorOutputPaths = opts.OutputPaths
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.DisableStacktrace = true
	return cfg.Build(zap.AddCallerSkip(1))
}

// SetLevel changes the level of every logger sharing the root level
func SetLevel(name string) error {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(name)))); err != nil {
		return fmt.Errorf("invalid log level %q: %w", name, err)
	}
	level.SetLevel(l)
	return nil
}

// NewDefaultLogger returns a logger writing to the root sinks
func NewDefaultLogger() Logger {
	mu.RLock()
	defer mu.RUnlock()
	return &zapLogger{base: root}
}

// NewWithCore wraps an arbitrary zap core, mainly for tests
func NewWithCore(core zapcore.Core) Logger {
	return &zapLogger{base: zap.New(core)}
}

// Nop returns a logger that discards everything
func Nop() Logger {
	return &zapLogger{base: zap.NewNop()}
}

// WithFields returns a root logger carrying the given fields
func WithFields(fields Fields) Logger {
	return NewDefaultLogger().WithFields(fields)
}

// Error logs an error on the root logger
func Error(err error, msg string, fields ...Fields) {
	NewDefaultLogger().Error(err, msg, fields...)
}

// Warn logs a warning on the root logger
func Warn(msg string, fields ...Fields) {
	NewDefaultLogger().Warn(msg, fields...)
}

// Sync flushes buffered entries of the root logger
func Sync() error {
	mu.RLock()
	defer mu.RUnlock()
	return root.Sync()
}

type zapLogger struct {
	base *zap.Logger
}

func (l *zapLogger) Debug(msg string, fields ...Fields) {
	if ce := l.base.Check(zapcore.DebugLevel, msg); ce != nil {
		ce.Write(toZap(fields)...)
	}
}

func (l *zapLogger) Info(msg string, fields ...Fields) {
	l.base.Info(msg, toZap(fields)...)
}

func (l *zapLogger) Warn(msg string, fields ...Fields) {
	l.base.Warn(msg, toZap(fields)...)
}

func (l *zapLogger) Error(err error, msg string, fields ...Fields) {
	zf := toZap(fields)
	if err != nil {
		zf = append(zf, zap.Error(err))
	}
	l.base.Error(msg, zf...)
}

func (l *zapLogger) WithFields(fields Fields) Logger {
	return &zapLogger{base: l.base.With(toZap([]Fields{fields})...)}
}

func toZap(fields []Fields) []zap.Field {
	n := 0
	for _, f := range fields {
		n += len(f)
	}
	if n == 0 {
		return nil
	}

	out := make([]zap.Field, 0, n)
	for _, f := range fields {
		for k, v := range f {
			out = append(out, zap.Any(k, v))
		}
	}
	return out
}
