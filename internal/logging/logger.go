package logging

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init initializes the global logger with configuration from environment variables.
// COMPRESSOR_LOG_LEVEL controls the log level: debug, info, warn, error (default: info)
// COMPRESSOR_LOG_FORMAT=console switches from JSON to human-readable output.
func Init() {
	zerolog.SetGlobalLevel(ParseLevel(os.Getenv("COMPRESSOR_LOG_LEVEL")))

	if os.Getenv("COMPRESSOR_LOG_FORMAT") == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		return
	}
	// CloudWatch indexes JSON fields directly.
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
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
