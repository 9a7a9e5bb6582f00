package server

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"github.com/teemow/smsbridge/internal/logging"
)

const (
	// MCPPath is the single path serving both the event stream and envelopes.
	MCPPath = "/mcp"

	// MaxBodyBytes caps a POSTed envelope.
	MaxBodyBytes int64 = 1 << 20
)

type routeKey struct {
	method string
	path   string
}

// Router dispatches on an explicit (method, path) table. A request whose
// path is known but whose method is not gets 405; anything else gets 404.
type Router struct {
	routes  map[routeKey]http.Handler
	methods map[string][]string
}

// NewRouter returns an empty route table.
func NewRouter() *Router {
	return &Router{
		routes:  make(map[routeKey]http.Handler),
		methods: make(map[string][]string),
	}
}

// Handle registers h for method and path. Registering the same pair twice
// replaces the earlier handler.
func (rt *Router) Handle(method, path string, h http.Handler) {
	key := routeKey{method: method, path: path}
	if _, exists := rt.routes[key]; !exists {
		rt.methods[path] = append(rt.methods[path], method)
		sort.Strings(rt.methods[path])
	}
	rt.routes[key] = h
}

func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h, ok := rt.routes[routeKey{method: r.Method, path: r.URL.Path}]; ok {
		h.ServeHTTP(w, r)
		return
	}

	if allowed, ok := rt.methods[r.URL.Path]; ok {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed", "")
		return
	}

	writeError(w, http.StatusNotFound, "Not found", "")
}

// streamHandler prepares the response for server-sent events and hands the
// connection to the transport. It returns when the client disconnects or
// the server shuts down.
func streamHandler(sc *ServerContext, transport http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Content-Type", "text/event-stream")
		h.Set("Cache-Control", "no-cache")
		h.Set("Connection", "keep-alive")

		logger := requestLogger(r)
		logger.Info("event stream opened", "remote_addr", r.RemoteAddr)

		metrics := sc.Metrics()
		metrics.IncrementActiveSessions(r.Context())
		defer metrics.DecrementActiveSessions(r.Context())

		transport.ServeHTTP(w, r)

		logger.Info("event stream closed", logging.Err(context.Cause(r.Context())))
	})
}

// messageHandler validates a POSTed JSON-RPC envelope. Envelopes addressed
// to a stream session (sessionId query parameter) are forwarded to the
// transport, which answers on the stream. The HTTP response only
// acknowledges that the envelope was accepted.
func messageHandler(transport http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := requestLogger(r)

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				logger.Warn("request body too large", "limit", tooLarge.Limit)
				w.Header().Set("Connection", "close")
				writeError(w, http.StatusRequestEntityTooLarge, "Request body too large", "")
				return
			}
			logger.Warn("failed to read request body", logging.Err(err))
			writeError(w, http.StatusBadRequest, "Failed to read request body", err.Error())
			return
		}

		env, err := ParseEnvelope(body)
		if err != nil {
			var se *syntaxError
			switch {
			case errors.Is(err, errEmptyBody):
				writeError(w, http.StatusBadRequest, "Empty request body", "")
			case errors.As(err, &se):
				writeError(w, http.StatusBadRequest, "Invalid JSON", se.Error())
			default:
				writeError(w, http.StatusBadRequest, "Invalid JSON-RPC message format", "")
			}
			logger.Debug("rejected envelope", logging.Err(err))
			return
		}

		logger = logger.With("method", env.Method)

		sessionID := r.URL.Query().Get("sessionId")
		if sessionID == "" {
			logger.Debug("envelope acknowledged without a session")
			writeJSON(w, http.StatusOK, StatusResponse{Status: "received"})
			return
		}

		r.Body = io.NopCloser(bytes.NewReader(body))
		rec := newCaptureWriter()
		transport.ServeHTTP(rec, r)

		if rec.status >= http.StatusBadRequest {
			logger.Warn("transport rejected envelope",
				logging.Session(sessionID),
				"transport_status", rec.status)
			writeError(w, http.StatusBadRequest, "Invalid session", strings.TrimSpace(rec.body.String()))
			return
		}

		logger.Debug("envelope dispatched", logging.Session(sessionID))
		writeJSON(w, http.StatusOK, StatusResponse{Status: "received"})
	})
}

// captureWriter buffers a transport response so the router can translate
// it into its own envelope.
type captureWriter struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func newCaptureWriter() *captureWriter {
	return &captureWriter{header: make(http.Header), status: http.StatusOK}
}

func (c *captureWriter) Header() http.Header { return c.header }

func (c *captureWriter) Write(p []byte) (int, error) { return c.body.Write(p) }

func (c *captureWriter) WriteHeader(status int) { c.status = status }

func requestLogger(r *http.Request) *slog.Logger {
	logger := slog.Default()
	if id := RequestIDFromContext(r.Context()); id != "" {
		logger = logging.WithRequestID(logger, id)
	}
	return logger
}
