//go:build debug
// +build debug

package driver

import (
	"log"

	"github.com/nickng/loopswap/internal/logger"
	"go.uber.org/zap"
)

// newLogger returns a new logger with default options.
func newLogger() *logger.Logger {
	l, err := zap.NewDevelopment()
	if err != nil {
		log.Fatal("Cannot create new logger:", err)
	}
	return logger.New(l.Sugar(), "")
}

// newFileLogger returns a new logger and also writes the log output to files.
func newFileLogger(files ...string) *logger.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = append(cfg.OutputPaths, files...)
	l, err := cfg.Build()
	if err != nil {
		log.Fatal("Cannot create new logger:", err)
	}
	return logger.New(l.Sugar(), "")
}
