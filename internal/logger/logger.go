// Package logger provides the structured logger used across the service.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New creates a structured console logger with default configuration.
func New() zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}
	return zerolog.New(output).With().Timestamp().Logger()
}

// NewWithWriter creates a structured logger writing to w. Used by tests to
// capture output.
func NewWithWriter(w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Logger()
}
