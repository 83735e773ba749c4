// Package logging wires zerolog to an agilira/lethe rotating file sink,
// the pairing demonstrated in agilira-lethe's own integration examples
// (examples/external_frameworks.go). When no log file is configured the
// console writer is used instead, so the zero-config CLI invocation
// keeps working without a logs directory.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/agilira/lethe"
	"github.com/rs/zerolog"
)

// Options configures the rotating sink. A zero value logs to stderr.
type Options struct {
	Filename   string
	MaxSizeStr string // e.g. "100MB"; empty keeps lethe's default
	MaxBackups int
	Compress   bool
}

// New builds a logger. The returned closer must be called on shutdown to
// flush and close the rotation writer (a no-op for the console fallback).
func New(opts Options) (zerolog.Logger, func() error) {
	var w io.Writer
	closer := func() error { return nil }

	if opts.Filename != "" {
		rotator := &lethe.Logger{
			Filename:   opts.Filename,
			MaxSizeStr: opts.MaxSizeStr,
			MaxBackups: opts.MaxBackups,
			Compress:   opts.Compress,
		}
		w = rotator
		closer = rotator.Close
	} else {
		w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}

	logger := zerolog.New(w).With().Timestamp().Str("component", "cxadc-capture-server").Logger()
	return logger, closer
}
