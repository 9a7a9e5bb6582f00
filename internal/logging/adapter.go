package logging

import (
	"fmt"
	"log/slog"
	"strings"
)

// Logger is the printf-style logging contract expected by the HTTP client
// used for vendor calls.
type Logger interface {
	Errorf(format string, v ...interface{})
	Warnf(format string, v ...interface{})
	Debugf(format string, v ...interface{})
}

// SlogAdapter adapts an slog.Logger to the Logger interface.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter wrapping the given slog.Logger.
// If logger is nil, slog.Default() is used.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogAdapter{logger: logger}
}

func (a *SlogAdapter) Errorf(format string, v ...interface{}) {
	a.logger.Error(formatMessage(format, v...))
}

func (a *SlogAdapter) Warnf(format string, v ...interface{}) {
	a.logger.Warn(formatMessage(format, v...))
}

func (a *SlogAdapter) Debugf(format string, v ...interface{}) {
	a.logger.Debug(formatMessage(format, v...))
}

// Logger returns the underlying slog.Logger.
func (a *SlogAdapter) Logger() *slog.Logger {
	return a.logger
}

// formatMessage trims the trailing newline printf-style callers tend to add.
func formatMessage(format string, v ...interface{}) string {
	return strings.TrimRight(fmt.Sprintf(format, v...), "\n")
}
