// Package logging builds the zerolog logger used across the CLI.
package logging

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// New returns a console logger writing to w. Only errors are logged unless
// debug is set; the CLI reports failures itself.
func New(w io.Writer, debug bool) zerolog.Logger {
	level := zerolog.ErrorLevel
	if debug {
		level = zerolog.DebugLevel
	}

	consoleWriter := zerolog.NewConsoleWriter()
	consoleWriter.Out = w
	consoleWriter.TimeFormat = time.TimeOnly
	consoleWriter.NoColor = true

	return zerolog.New(consoleWriter).
		Level(level).
		With().
		Timestamp().
		Logger()
}
