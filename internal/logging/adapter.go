package logging

import (
	"io"
	"log/slog"
	"os"
)

// Logger is the leveled, key/value logging interface shared by the server
// context and the remote client's HTTP transport.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// SlogAdapter adapts a *slog.Logger to the Logger interface.
// It also satisfies retryablehttp.LeveledLogger.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter wraps logger. A nil logger falls back to slog.Default().
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogAdapter{logger: logger}
}

// DefaultLogger returns an adapter around slog.Default().
func DefaultLogger() *SlogAdapter {
	return NewSlogAdapter(nil)
}

// Logger returns the wrapped *slog.Logger.
func (a *SlogAdapter) Logger() *slog.Logger {
	return a.logger
}

// Debug logs at debug level.
func (a *SlogAdapter) Debug(msg string, args ...interface{}) {
	a.logger.Debug(msg, args...)
}

// Info logs at info level.
func (a *SlogAdapter) Info(msg string, args ...interface{}) {
	a.logger.Info(msg, args...)
}

// Warn logs at warn level.
func (a *SlogAdapter) Warn(msg string, args ...interface{}) {
	a.logger.Warn(msg, args...)
}

// Error logs at error level.
func (a *SlogAdapter) Error(msg string, args ...interface{}) {
	a.logger.Error(msg, args...)
}

// With returns an adapter whose records carry the given attributes.
func (a *SlogAdapter) With(args ...interface{}) *SlogAdapter {
	return &SlogAdapter{logger: a.logger.With(args...)}
}

// Setup installs a JSON slog handler as the process default and returns it.
// Output goes to w, or stderr when w is nil, because stdout belongs to the
// stdio transport.
func Setup(debug bool, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}
