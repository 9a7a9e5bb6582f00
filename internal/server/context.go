package server

import (
	"context"
	"errors"
	"sync"

	"github.com/teemow/smsbridge/internal/config"
	"github.com/teemow/smsbridge/internal/instrumentation"
	"github.com/teemow/smsbridge/internal/twilio"
)

// ServerContext carries the immutable configuration and the shared
// collaborators every handler needs. It is created once at startup.
type ServerContext struct {
	ctx         context.Context
	cancel      context.CancelFunc
	config      *config.Config
	sender      twilio.Sender
	metrics     *instrumentation.Metrics
	auditLogger *instrumentation.AuditLogger
	mu          sync.RWMutex
	shutdown    bool
}

// NewServerContext creates a new server context. cfg and sender are required.
func NewServerContext(ctx context.Context, cfg *config.Config, sender twilio.Sender) (*ServerContext, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if sender == nil {
		return nil, errors.New("message sender is required")
	}

	shutdownCtx, cancel := context.WithCancel(ctx)
	return &ServerContext{
		ctx:     shutdownCtx,
		cancel:  cancel,
		config:  cfg,
		sender:  sender,
		metrics: &instrumentation.Metrics{},
	}, nil
}

// Context returns the server context. It is cancelled on Shutdown.
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Config returns the startup configuration.
func (sc *ServerContext) Config() *config.Config {
	return sc.config
}

// Sender returns the vendor client used to deliver messages.
func (sc *ServerContext) Sender() twilio.Sender {
	return sc.sender
}

// SetMetrics sets the metrics recorder. Nil resets it to a no-op recorder.
func (sc *ServerContext) SetMetrics(m *instrumentation.Metrics) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if m == nil {
		m = &instrumentation.Metrics{}
	}
	sc.metrics = m
}

// Metrics returns the metrics recorder. It is never nil.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.metrics
}

// SetAuditLogger sets the audit logger.
func (sc *ServerContext) SetAuditLogger(al *instrumentation.AuditLogger) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.auditLogger = al
}

// AuditLogger returns the audit logger, or nil when auditing is off.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.auditLogger
}

// IsShutdown returns whether the server has been shut down.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown cancels the server context. It is idempotent.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}
	sc.shutdown = true
	sc.cancel()
	return nil
}
