package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/smsbridge/internal/logging"
)

const (
	// DefaultKeepAliveInterval is how often idle event streams get a ping.
	DefaultKeepAliveInterval = 30 * time.Second

	defaultReadHeaderTimeout = 10 * time.Second
	defaultIdleTimeout       = 120 * time.Second
)

type listenFunc func(network, address string) (net.Listener, error)

// HTTPServer serves the MCP event stream and envelope intake on MCPPath,
// plus the health probes.
type HTTPServer struct {
	handler http.Handler
	health  *HealthChecker
	port    int

	mu            sync.Mutex
	httpServer    *http.Server
	cancelStreams context.CancelFunc
	addr          net.Addr
}

// NewHTTPServer wires mcpSrv into an SSE transport behind the route table.
func NewHTTPServer(sc *ServerContext, mcpSrv *mcpserver.MCPServer) *HTTPServer {
	sse := mcpserver.NewSSEServer(mcpSrv,
		mcpserver.WithSSEEndpoint(MCPPath),
		mcpserver.WithMessageEndpoint(MCPPath),
		mcpserver.WithKeepAliveInterval(DefaultKeepAliveInterval),
	)
	health := NewHealthChecker(sc)

	return &HTTPServer{
		handler: NewHandler(sc, sse.SSEHandler(), sse.MessageHandler(), health),
		health:  health,
		port:    sc.Config().Port,
	}
}

// NewHandler assembles the route table and middleware. stream serves GET
// on MCPPath and message receives forwarded envelopes. health may be nil.
func NewHandler(sc *ServerContext, stream, message http.Handler, health *HealthChecker) http.Handler {
	rt := NewRouter()
	rt.Handle(http.MethodGet, MCPPath, streamHandler(sc, stream))
	rt.Handle(http.MethodPost, MCPPath, messageHandler(message))
	if health != nil {
		health.RegisterRoutes(rt)
	}

	return withRequestID(withInstrumentation(sc, withRecovery(rt)))
}

// Handler returns the root HTTP handler.
func (s *HTTPServer) Handler() http.Handler {
	return s.handler
}

// HealthChecker returns the probe state.
func (s *HTTPServer) HealthChecker() *HealthChecker {
	return s.health
}

// Listen binds the configured port on all interfaces, preferring the
// dual-stack wildcard and falling back to IPv4 only.
func (s *HTTPServer) Listen() (net.Listener, error) {
	return listenWithFallback(net.Listen, s.port)
}

func listenWithFallback(listen listenFunc, port int) (net.Listener, error) {
	p := strconv.Itoa(port)

	ln, err := listen("tcp", net.JoinHostPort("::", p))
	if err == nil {
		return ln, nil
	}
	slog.Warn("failed to bind IPv6 wildcard address, falling back to IPv4", logging.Err(err))

	ln, err4 := listen("tcp4", net.JoinHostPort("0.0.0.0", p))
	if err4 != nil {
		return nil, fmt.Errorf("failed to listen on port %d: %w", port, errors.Join(err, err4))
	}
	return ln, nil
}

// Serve accepts connections on ln until Shutdown is called. Streams are
// bound to ctx and end when it is cancelled.
func (s *HTTPServer) Serve(ctx context.Context, ln net.Listener) error {
	baseCtx, cancel := context.WithCancel(ctx)

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: defaultReadHeaderTimeout,
		IdleTimeout:       defaultIdleTimeout,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}

	s.mu.Lock()
	s.httpServer = srv
	s.cancelStreams = cancel
	s.addr = ln.Addr()
	s.mu.Unlock()

	s.health.SetReady(true)
	slog.Info("HTTP server listening", "addr", ln.Addr().String(), "path", MCPPath)

	err := srv.Serve(ln)
	cancel()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Addr returns the bound address, or nil before Serve.
func (s *HTTPServer) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Shutdown marks the server not ready, closes open event streams and waits
// for in-flight requests to finish.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	s.health.SetReady(false)

	s.mu.Lock()
	srv, cancel := s.httpServer, s.cancelStreams
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	cancel()
	return srv.Shutdown(ctx)
}
