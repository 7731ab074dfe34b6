// Package logging configures the process-wide zerolog logger shared by the
// server, client, and worker binaries.
package logging

import (
	"os"
	"time"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// Log is the process-wide logger. Init must be called once at startup
// before any other package logs through it.
var Log zerolog.Logger

// Init configures Log for serviceName. When stdout is a terminal it writes
// a colored console format; otherwise it writes structured JSON, matching
// what a supervised process expects when its output is captured to a file.
func Init(serviceName string) {
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	var out zerolog.ConsoleWriter
	if isatty.IsTerminal(os.Stdout.Fd()) {
		out = zerolog.ConsoleWriter{Out: colorable.NewColorableStdout(), TimeFormat: time.Kitchen}
		Log = zerolog.New(out).With().Timestamp().Str("service", serviceName).Logger()
		return
	}

	Log = zerolog.New(os.Stdout).With().Timestamp().Str("service", serviceName).Logger()
}
