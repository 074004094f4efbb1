//go:build !debug
// +build !debug

package driver

import (
	"log"

	"github.com/fatih/color"
	"github.com/nickng/loopswap/internal/logger"
	"go.uber.org/zap"
)

// newLogger returns a new logger with default options.
func newLogger() *logger.Logger {
	color.NoColor = true
	l, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Cannot create new logger:", err)
	}
	return logger.New(l.Sugar(), "")
}

// newFileLogger returns a new logger and also writes the log output to files.
func newFileLogger(files ...string) *logger.Logger {
	color.NoColor = true
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = append(cfg.OutputPaths, files...)
	l, err := cfg.Build()
	if err != nil {
		log.Fatal("Cannot create new logger:", err)
	}
	return logger.New(l.Sugar(), "")
}
