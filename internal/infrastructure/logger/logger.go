package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Config selects the level and output format of the service logger.
type Config struct {
	Level  string // debug, info, warn, error
	Format string // json (default) or console
}

// New builds a zerolog logger writing to stdout. The console format is meant
// for local runs; anything else emits line-delimited JSON for collection.
func New(cfg Config) zerolog.Logger {
	return zerolog.New(writerFor(cfg.Format)).
		Level(parseLevel(cfg.Level)).
		With().
		Timestamp().
		Caller().
		Logger()
}

func writerFor(format string) io.Writer {
	if format == "console" {
		return zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
	}

	return os.Stdout
}

// parseLevel maps a config string to a zerolog level, defaulting to info for
// empty or unknown values.
func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
