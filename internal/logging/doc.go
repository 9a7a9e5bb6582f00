// Package logging provides structured logging utilities for smsbridge.
//
// All logging goes through log/slog. This package keeps attribute names
// consistent and offers helpers that keep phone numbers and credentials out
// of log output.
//
// # Usage Patterns
//
//	logger := logging.WithTool(slog.Default(), "send-message")
//	logger.Info("message sent",
//	    logging.Recipient(to),
//	    logging.Status(logging.StatusSuccess))
//
// Logs are written to stderr so the stdio transport can own stdout.
package logging
