// Package logging builds the logrus logger every binary uses.
package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Options struct {
	Level string
	// File, when set, receives a copy of every entry and is rotated.
	File string
	// Output defaults to stderr.
	Output io.Writer
}

// NewLogger returns a JSON logger whose entries carry a service field.
func NewLogger(service string, opts Options) *logrus.Entry {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	level, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	if opts.File != "" {
		out = io.MultiWriter(out, &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    50,
			MaxBackups: 3,
			MaxAge:     28,
			Compress:   true,
		})
	}
	logger.SetOutput(out)

	return logger.WithField("service", service)
}
