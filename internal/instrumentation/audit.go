package instrumentation

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/teemow/smsbridge/internal/logging"
)

// ToolInvocation is the audit record for a single MCP tool call.
//
// Recipient holds the raw destination number. AuditLogger masks it unless
// PII logging is explicitly enabled.
type ToolInvocation struct {
	Tool      string
	Recipient string
	Provider  string
	MessageID string

	StartTime time.Time
	Duration  time.Duration
	Success   bool
	Error     string

	TraceID string
	SpanID  string
}

// NewToolInvocation starts timing a tool call. Call Complete when it ends.
func NewToolInvocation(tool string) *ToolInvocation {
	return &ToolInvocation{Tool: tool, StartTime: time.Now()}
}

// WithRecipient sets the destination number.
func (ti *ToolInvocation) WithRecipient(phone string) *ToolInvocation {
	ti.Recipient = phone
	return ti
}

// WithProvider sets the vendor that handled the call.
func (ti *ToolInvocation) WithProvider(provider string) *ToolInvocation {
	ti.Provider = provider
	return ti
}

// WithMessageID records the vendor-assigned message identifier.
func (ti *ToolInvocation) WithMessageID(id string) *ToolInvocation {
	ti.MessageID = id
	return ti
}

// WithSpanContext copies trace and span IDs from the span in ctx.
func (ti *ToolInvocation) WithSpanContext(ctx context.Context) *ToolInvocation {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if sc.IsValid() {
		ti.TraceID = sc.TraceID().String()
		ti.SpanID = sc.SpanID().String()
	}
	return ti
}

// Complete stops the timer and records the outcome.
func (ti *ToolInvocation) Complete(success bool, err error) *ToolInvocation {
	ti.Duration = time.Since(ti.StartTime)
	ti.Success = success
	if err != nil {
		ti.Error = err.Error()
	}
	return ti
}

// Status returns "success" or "error".
func (ti *ToolInvocation) Status() string {
	if ti.Success {
		return StatusSuccess
	}
	return StatusError
}

// LogAttrs returns the audit attributes. The recipient is masked unless
// includePII is set.
func (ti *ToolInvocation) LogAttrs(includePII bool) []slog.Attr {
	attrs := []slog.Attr{
		slog.String("tool", ti.Tool),
		slog.Duration("duration", ti.Duration),
		slog.Bool("success", ti.Success),
	}

	if ti.Recipient != "" {
		recipient := logging.MaskPhone(ti.Recipient)
		if includePII {
			recipient = ti.Recipient
		}
		attrs = append(attrs,
			slog.String("recipient", recipient),
			slog.String("recipient_hash", logging.HashRecipient(ti.Recipient)))
	}
	if ti.Provider != "" {
		attrs = append(attrs, slog.String("provider", ti.Provider))
	}
	if ti.MessageID != "" {
		attrs = append(attrs, slog.String("message_id", ti.MessageID))
	}
	if ti.TraceID != "" {
		attrs = append(attrs, slog.String("trace_id", ti.TraceID), slog.String("span_id", ti.SpanID))
	}
	if ti.Error != "" {
		attrs = append(attrs, slog.String("error", ti.Error))
	}

	return attrs
}

// AuditLogger writes one structured record per tool invocation.
type AuditLogger struct {
	logger     *slog.Logger
	includePII bool
	enabled    bool
}

// NewAuditLogger creates an enabled AuditLogger that masks recipients.
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	return NewAuditLoggerWithConfig(logger, AuditLoggingConfig{Enabled: true})
}

// NewAuditLoggerWithConfig creates an AuditLogger from config.
func NewAuditLoggerWithConfig(logger *slog.Logger, config AuditLoggingConfig) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{
		logger:     logger.With(slog.String("component", "audit")),
		includePII: config.IncludePII,
		enabled:    config.Enabled,
	}
}

// LogToolInvocation writes ti as "tool_executed" or "tool_failed".
// It is safe to call on a nil AuditLogger.
func (al *AuditLogger) LogToolInvocation(ti *ToolInvocation) {
	if al == nil || !al.enabled || ti == nil {
		return
	}

	attrs := ti.LogAttrs(al.includePII)
	args := make([]any, len(attrs))
	for i, attr := range attrs {
		args[i] = attr
	}

	if ti.Success {
		al.logger.Info("tool_executed", args...)
	} else {
		al.logger.Warn("tool_failed", args...)
	}
}
