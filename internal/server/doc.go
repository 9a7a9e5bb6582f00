// Package server provides the HTTP side of smsbridge: the shared
// ServerContext, the route table in front of the MCP event-stream
// transport, health probes and the Prometheus metrics server.
//
// # Routes
//
// A single path, /mcp, serves both directions of the protocol:
//   - GET opens a server-sent event stream bound to a transport session
//   - POST accepts one JSON-RPC envelope
//
// POSTed envelopes are validated before anything else sees them. Empty,
// malformed or incomplete envelopes are rejected with 400, bodies over
// MaxBodyBytes with 413. Envelopes carrying a sessionId query parameter
// are forwarded to that session and answered on its stream; the HTTP
// response is only an acknowledgement.
//
// Every POSTed envelope must carry a non-null id. JSON-RPC notifications
// have none, so an SSE client that POSTs notifications/initialized after
// initialize gets a 400 for that message; requests are unaffected.
//
// Other methods on a known path get 405 with an Allow header, unknown
// paths get 404. Every response carries an X-Request-ID header.
//
// # Listening
//
// HTTPServer binds the configured port on the dual-stack wildcard address
// and falls back to IPv4 when the host has no IPv6 support.
package server
