// Package instrumentation provides OpenTelemetry metrics, tracing and audit
// logging for the smsbridge MCP server.
//
// # Metrics
//
// HTTP:
//   - http_requests_total: requests by method, path and status
//   - http_request_duration_seconds: request latency
//   - active_sessions: open event streams
//
// SMS provider:
//   - sms_provider_operations_total: vendor calls by provider, operation and status
//   - sms_provider_operation_duration_seconds: vendor call latency
//
// MCP:
//   - mcp_tool_invocations_total / mcp_tool_duration_seconds
//   - mcp_prompt_requests_total
//
// # Tracing
//
// Spans are created for tool invocations (tool.<name>) and vendor calls
// (sms.<provider>.<operation>).
//
// # Configuration
//
// Environment variables:
//   - INSTRUMENTATION_ENABLED (default: true)
//   - METRICS_EXPORTER: prometheus, otlp, stdout (default: prometheus)
//   - TRACING_EXPORTER: otlp, stdout, none (default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT, OTEL_EXPORTER_OTLP_INSECURE
//   - OTEL_TRACES_SAMPLER_ARG (default: 0.1)
//   - OTEL_SERVICE_NAME (default: smsbridge)
//   - METRICS_DETAILED_LABELS (default: false)
//   - AUDIT_LOGGING_ENABLED, AUDIT_LOGGING_INCLUDE_PII
package instrumentation
