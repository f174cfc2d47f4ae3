// Package logging builds the run's zerolog logger and the status line it
// writes through.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config holds logger configuration options.
type Config struct {
	// Level is the explicit minimum level ("debug", "info", ...). Empty
	// means derive it from Verbose/Quiet.
	Level string
	// Verbose is a shortcut for debug.
	Verbose bool
	// Quiet suppresses all output.
	Quiet bool
	// NoColor disables ANSI colors.
	NoColor bool
	// Output is where log lines go. Defaults to stderr.
	Output io.Writer
}

// New creates a logger from cfg. A quiet config yields a disabled logger.
func New(cfg Config) zerolog.Logger {
	if cfg.Quiet {
		return zerolog.Nop()
	}

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	writer := zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    cfg.NoColor,
		TimeFormat: time.Kitchen,
	}

	return zerolog.New(writer).
		Level(ResolveLevel(cfg)).
		With().
		Timestamp().
		Logger()
}

// ResolveLevel determines the log level using these precedence rules:
//  1. explicit Level (invalid values fall back to info)
//  2. Quiet
//  3. Verbose
//  4. info
func ResolveLevel(cfg Config) zerolog.Level {
	if cfg.Level != "" {
		level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
		if err != nil || level == zerolog.NoLevel {
			fmt.Fprintf(os.Stderr, "Warning: invalid log level %q, using %q\n", cfg.Level, "info")
			return zerolog.InfoLevel
		}
		return level
	}
	if cfg.Quiet {
		return zerolog.Disabled
	}
	if cfg.Verbose {
		return zerolog.DebugLevel
	}
	return zerolog.InfoLevel
}
