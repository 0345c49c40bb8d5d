package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds the service logger. Development gets a human readable console
// writer; every other environment logs JSON to stdout.
func New(env, level string) zerolog.Logger {
	return newLogger(env, level, os.Stdout)
}

func newLogger(env, level string, out io.Writer) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.TimeFieldFormat = time.RFC3339Nano

	var log zerolog.Logger
	if env == "development" {
		log = zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen, NoColor: true})
	} else {
		log = zerolog.New(out)
	}
	return log.Level(lvl).With().Timestamp().Str("service", "ledger").Logger()
}
