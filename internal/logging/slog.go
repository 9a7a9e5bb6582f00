package logging

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Common log attribute keys.
const (
	KeyOperation = "operation"
	KeyTool      = "tool"
	KeyPrompt    = "prompt"
	KeyStatus    = "status"
	KeyError     = "error"
	KeyDuration  = "duration"
	KeyRequestID = "request_id"
	KeyRecipient = "recipient"
	KeySession   = "session_id"
	KeyTransport = "transport"
)

// Status values for consistent logging.
// Duplicated from instrumentation to avoid an import cycle.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Setup installs a text handler writing to w as the default slog logger.
// A nil writer means stderr, which keeps stdout free for the stdio transport.
func Setup(w io.Writer, debug bool) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

// WithOperation returns a logger with the operation attribute set.
func WithOperation(logger *slog.Logger, operation string) *slog.Logger {
	return logger.With(slog.String(KeyOperation, operation))
}

// WithTool returns a logger with the tool attribute set.
func WithTool(logger *slog.Logger, tool string) *slog.Logger {
	return logger.With(slog.String(KeyTool, tool))
}

// WithRequestID returns a logger with the request ID attribute set.
func WithRequestID(logger *slog.Logger, id string) *slog.Logger {
	return logger.With(slog.String(KeyRequestID, id))
}

func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

func Tool(tool string) slog.Attr {
	return slog.String(KeyTool, tool)
}

func Prompt(name string) slog.Attr {
	return slog.String(KeyPrompt, name)
}

func Status(status string) slog.Attr {
	return slog.String(KeyStatus, status)
}

func RequestID(id string) slog.Attr {
	return slog.String(KeyRequestID, id)
}

func Session(id string) slog.Attr {
	return slog.String(KeySession, id)
}

// Err returns a slog attribute for an error.
// A nil error yields an empty group, which slog omits from output.
//
//	logger.Info("operation", logging.Err(err))  // safe even if err is nil
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Group("")
	}
	return slog.String(KeyError, err.Error())
}

// MaskPhone hides all but the country prefix and the last two digits of a
// phone number, e.g. "+15551234567" becomes "+1********67".
func MaskPhone(phone string) string {
	n := len(phone)
	switch {
	case n == 0:
		return ""
	case n <= 4:
		return "****"
	}

	keepHead := 1
	if phone[0] == '+' {
		keepHead = 2
	}
	masked := make([]byte, n)
	for i := 0; i < n; i++ {
		if i < keepHead || i >= n-2 {
			masked[i] = phone[i]
		} else {
			masked[i] = '*'
		}
	}
	return string(masked)
}

// HashRecipient returns a stable pseudonym for a phone number so log entries
// can be correlated without exposing the number itself.
func HashRecipient(phone string) string {
	if phone == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(phone))
	return "recipient:" + hex.EncodeToString(hash[:8])
}

// Recipient returns a slog attribute carrying the masked destination number.
func Recipient(phone string) slog.Attr {
	return slog.String(KeyRecipient, MaskPhone(phone))
}

// SanitizeToken returns a length indicator without exposing any token content.
func SanitizeToken(token string) string {
	if token == "" {
		return "<empty>"
	}
	return fmt.Sprintf("[token:%d chars]", len(token))
}
