// Package logging builds the logr loggers used by the solver and the CLI.
package logging

import (
	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Verbosity levels for logger.V(...).
const (
	INFO  = 0
	DEBUG = 1
	TRACE = 2
)

// NewLogger returns a zap-backed logger that emits entries up to the given
// verbosity. Development loggers write human-readable console output.
func NewLogger(verbosity int, development bool) (logr.Logger, error) {
	var zc zap.Config
	if development {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
		zc.Sampling = nil
	}
	// logr verbosity v maps to zap level -v.
	zc.Level = zap.NewAtomicLevelAt(zapcore.Level(-verbosity))
	zc.OutputPaths = []string{"stderr"}

	zl, err := zc.Build()
	if err != nil {
		return logr.Discard(), err
	}
	return zapr.NewLogger(zl), nil
}

// NewTestLogger returns a development logger at DEBUG verbosity.
func NewTestLogger() logr.Logger {
	l, err := NewLogger(DEBUG, true)
	if err != nil {
		return logr.Discard()
	}
	return l
}
