package server

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/teemow/smsbridge/internal/logging"
)

const (
	healthzPath        = "/healthz"
	readyzPath         = "/readyz"
	detailedHealthPath = "/healthz/detailed"
)

const (
	healthStatusOK           = "ok"
	healthStatusNotReady     = "not ready"
	healthStatusShuttingDown = "shutting down"
)

// HealthChecker serves liveness and readiness probes.
type HealthChecker struct {
	ready         atomic.Bool
	serverContext *ServerContext
	startTime     time.Time
}

// NewHealthChecker creates a HealthChecker that starts out not ready.
// Call SetReady once the listener is accepting connections.
func NewHealthChecker(sc *ServerContext) *HealthChecker {
	return &HealthChecker{serverContext: sc, startTime: time.Now()}
}

func (h *HealthChecker) SetReady(ready bool) {
	h.ready.Store(ready)
}

func (h *HealthChecker) IsReady() bool {
	return h.ready.Load()
}

func (h *HealthChecker) isShuttingDown() bool {
	return h.serverContext != nil && h.serverContext.IsShutdown()
}

// HealthResponse is the body of /healthz and /readyz.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// DetailedHealthResponse is the body of /healthz/detailed.
type DetailedHealthResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
	Sender string `json:"sender,omitempty"`
	Port   int    `json:"port,omitempty"`
}

// LivenessHandler reports that the process is running.
func (h *HealthChecker) LivenessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, HealthResponse{Status: healthStatusOK})
	})
}

// ReadinessHandler reports whether the server should receive traffic.
func (h *HealthChecker) ReadinessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		checks := map[string]string{"ready": healthStatusOK, "shutdown": healthStatusOK}
		status := http.StatusOK

		if !h.ready.Load() {
			checks["ready"] = healthStatusNotReady
			status = http.StatusServiceUnavailable
		}
		if h.isShuttingDown() {
			checks["shutdown"] = healthStatusShuttingDown
			status = http.StatusServiceUnavailable
		}

		resp := HealthResponse{Status: healthStatusOK, Checks: checks}
		if status != http.StatusOK {
			resp.Status = healthStatusNotReady
		}
		writeJSON(w, status, resp)
	})
}

// DetailedHealthHandler adds uptime and the masked sender number.
func (h *HealthChecker) DetailedHealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		resp := DetailedHealthResponse{
			Status: healthStatusOK,
			Uptime: time.Since(h.startTime).Truncate(time.Second).String(),
		}
		if h.serverContext != nil {
			cfg := h.serverContext.Config()
			resp.Sender = logging.MaskPhone(cfg.PhoneNumber)
			resp.Port = cfg.Port
		}

		status := http.StatusOK
		switch {
		case !h.ready.Load():
			resp.Status = healthStatusNotReady
			status = http.StatusServiceUnavailable
		case h.isShuttingDown():
			resp.Status = healthStatusShuttingDown
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, resp)
	})
}

// RegisterRoutes adds the probe endpoints to rt as GET routes.
func (h *HealthChecker) RegisterRoutes(rt *Router) {
	rt.Handle(http.MethodGet, healthzPath, h.LivenessHandler())
	rt.Handle(http.MethodGet, readyzPath, h.ReadinessHandler())
	rt.Handle(http.MethodGet, detailedHealthPath, h.DetailedHealthHandler())
}
