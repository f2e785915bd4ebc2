package testutil

import (
	"io"
	"log/slog"

	"github.com/devhive/identity-server/internal/logger"
)

// MakeNoopLogger returns a Logger that discards every record. Tests pass it
// to services and handlers that require one.
func MakeNoopLogger() *logger.Logger {
	return &logger.Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}
