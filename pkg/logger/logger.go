package logger

import (
	"os"

	"github.com/rs/zerolog"
)

// New builds the root zerolog logger. Development gets the console writer,
// everything else emits JSON.
func New(env, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	if env == "development" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			Level(lvl).
			With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).
		Level(lvl).
		With().Timestamp().Logger()
}
