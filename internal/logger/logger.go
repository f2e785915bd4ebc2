package logger

import (
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with a Fatal level for startup failures.
type Logger struct {
	*slog.Logger
}

// New returns a Logger emitting text records to stdout at the given slog
// level. Debug and below also record the call site.
func New(level int) *Logger {
	opts := &slog.HandlerOptions{Level: slog.Level(level)}
	if level <= int(slog.LevelDebug) {
		opts.AddSource = true
	}
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(os.Stdout, opts)),
	}
}

// Fatal logs at error level and exits the process.
func (l *Logger) Fatal(msg string, args ...any) {
	l.Logger.Error(msg, args...)
	os.Exit(1)
}
