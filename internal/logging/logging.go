// Package logging provides the structured logger used across the engine,
// backed by zap (spec's ambient logging stack — see SPEC_FULL.md AMBIENT
// STACK).
package logging

import (
	"fmt"

	"go.uber.org/zap"
)

// Logger is the narrow logging surface every engine component depends on
// (gitexec, forge, reconcile, pipeline all accept this shape).
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

type zapLogger struct {
	sugar *zap.SugaredLogger
}

// New builds a Logger. When debug is false, debug-level records are
// discarded; when debugFile is non-empty, output also goes to that file in
// addition to stderr.
func New(debug bool, debugFile string) (Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.DisableStacktrace = true
	cfg.OutputPaths = []string{"stderr"}

	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	} else {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	if debugFile != "" {
		cfg.OutputPaths = append(cfg.OutputPaths, debugFile)
	}

	l, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return &zapLogger{sugar: l.Sugar()}, nil
}

func (z *zapLogger) Debug(msg string, args ...interface{}) { z.sugar.Debugf(msg, args...) }
func (z *zapLogger) Info(msg string, args ...interface{})  { z.sugar.Infof(msg, args...) }
func (z *zapLogger) Warn(msg string, args ...interface{})  { z.sugar.Warnf(msg, args...) }
func (z *zapLogger) Error(msg string, args ...interface{}) { z.sugar.Errorf(msg, args...) }

// Nop is a Logger that discards everything, used by tests.
type Nop struct{}

func (Nop) Debug(string, ...interface{}) {}
func (Nop) Info(string, ...interface{})  {}
func (Nop) Warn(string, ...interface{})  {}
func (Nop) Error(string, ...interface{}) {}
