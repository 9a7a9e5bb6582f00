// Package common provides shared helpers for MCP tool implementations,
// chiefly the instrumentation wrapper every tool handler is registered
// through.
package common
