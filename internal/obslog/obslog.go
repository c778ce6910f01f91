// Package obslog adapts go.uber.org/zap to the five-level logger contract
// spec.md §6 asks the engine to consume ({fine, debug, info, warn, error}),
// the way the pack's trading optimiser threads a *zap.Logger through a
// genetic-algorithm-shaped component instead of reaching for a package-level
// logger.
package obslog

import "go.uber.org/zap"

// Logger is the engine's logging contract. Every subsystem that logs takes
// one explicitly at construction time; there is no package-global logger.
type Logger interface {
	Fine(msg string, fields ...zap.Field)
	Debug(msg string, fields ...zap.Field)
	Info(msg string, fields ...zap.Field)
	Warn(msg string, fields ...zap.Field)
	Error(msg string, fields ...zap.Field)
}

// zapLogger implements Logger over a *zap.Logger. fine maps to DebugLevel
// with an extra field so it can be filtered separately from ordinary debug
// output in a structured-log backend.
type zapLogger struct {
	z *zap.Logger
}

// New wraps an existing *zap.Logger.
func New(z *zap.Logger) Logger {
	if z == nil {
		z = zap.NewNop()
	}
	return &zapLogger{z: z}
}

// NewProduction builds a zap production logger (JSON, info level and above)
// wrapped as a Logger, for use by cmd/metasearch and tests that don't need a
// custom zap.Config.
func NewProduction() (Logger, error) {
	z, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return New(z), nil
}

// NewNop returns a Logger that discards everything, for tests.
func NewNop() Logger {
	return New(zap.NewNop())
}

func (l *zapLogger) Fine(msg string, fields ...zap.Field) {
	l.z.Debug(msg, append(fields, zap.Bool("fine", true))...)
}

func (l *zapLogger) Debug(msg string, fields ...zap.Field) { l.z.Debug(msg, fields...) }
func (l *zapLogger) Info(msg string, fields ...zap.Field)  { l.z.Info(msg, fields...) }
func (l *zapLogger) Warn(msg string, fields ...zap.Field)  { l.z.Warn(msg, fields...) }
func (l *zapLogger) Error(msg string, fields ...zap.Field) { l.z.Error(msg, fields...) }
