package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

var zlog zerolog.Logger

// InitStructured initializes the structured zerolog logger. Local
// environments get pretty console output, everything else JSON.
// LOG_LEVEL overrides the default info level.
func InitStructured(env string) {
	var w io.Writer

	if env == "" || env == "development" || env == "dev" || env == "local" {
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	} else {
		w = os.Stdout
	}

	level := zerolog.InfoLevel
	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		if parsed, err := zerolog.ParseLevel(raw); err == nil {
			level = parsed
		}
	}

	zlog = zerolog.New(w).Level(level).With().
		Timestamp().
		Str("service", "sensai-backend").
		Logger()

	zerolog.TimeFieldFormat = time.RFC3339
}

// GetLogger returns the global zerolog logger
func GetLogger() *zerolog.Logger {
	return &zlog
}

// WithRequestID returns a logger with request_id field
func WithRequestID(requestID string) zerolog.Logger {
	return zlog.With().Str("request_id", requestID).Logger()
}

// WithQuestion returns a logger scoped to one user's work on one
// question, the unit most editor logs refer to
func WithQuestion(userID, questionID string) zerolog.Logger {
	return zlog.With().Str("user_id", userID).Str("question_id", questionID).Logger()
}
