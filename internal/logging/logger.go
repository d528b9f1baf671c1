package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Level picks the log level from the CLI verbosity flags.
func Level(verbose, debug bool) zerolog.Level {
	switch {
	case debug:
		return zerolog.DebugLevel
	case verbose:
		return zerolog.InfoLevel
	default:
		return zerolog.WarnLevel
	}
}

// Setup installs a console logger on w (stderr when nil) as the global logger.
// Color is only used when writing to stderr.
func Setup(w io.Writer, level zerolog.Level) {
	color := w == nil
	if w == nil {
		w = os.Stderr
	}
	zerolog.SetGlobalLevel(level)
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen, NoColor: !color}
	log.Logger = zerolog.New(out).With().Timestamp().Logger()
}

// Component creates a new logger with a component identifier.
// Uses the "cmp" key for consistency with zerolog conventions.
func Component(name string) zerolog.Logger {
	return log.With().Str("cmp", name).Logger()
}
