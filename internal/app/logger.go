package app

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"taskboard/internal/config"
)

// NewLogger builds the process logger: human-readable console output
// in development, JSON at info level in production.
func NewLogger(env string) zerolog.Logger {
	w := io.Writer(os.Stdout)
	level := zerolog.InfoLevel

	if env != config.EnvProduction {
		level = zerolog.DebugLevel

		consoleWriter := zerolog.NewConsoleWriter()
		consoleWriter.TimeFormat = time.DateTime
		consoleWriter.Out = os.Stdout
		w = consoleWriter
	}

	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Caller().
		Int("pid", os.Getpid()).
		Logger()
}
