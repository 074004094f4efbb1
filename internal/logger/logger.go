// Package logger holds the zap logger wrapper shared by the loop passes.
package logger

import (
	"github.com/fatih/color"
	"go.uber.org/zap"
)

// Logger encapsulates a Logger and module which it belongs to.
// Use this through SetLogger() of a pass component.
type Logger struct {
	*zap.SugaredLogger
	module string
}

type LogSetter interface {
	SetLogger(*Logger)
}

// New wraps l for the named module.
func New(l *zap.SugaredLogger, module string) *Logger {
	return &Logger{SugaredLogger: l, module: module}
}

// Nop returns a Logger that discards everything.
func Nop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}

// Module returns (stylised) module name.
func (l *Logger) Module() string {
	return l.module
}

// For returns a copy of l tagged with a coloured module name.
func (l *Logger) For(module string, c color.Attribute) *Logger {
	return &Logger{
		SugaredLogger: l.SugaredLogger,
		module:        color.New(c).Sprint(module),
	}
}
