package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/teemow/smsbridge/internal/ids"
	"github.com/teemow/smsbridge/internal/logging"
)

// RequestIDHeader carries the per-request correlation ID.
const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// RequestIDFromContext returns the request ID set by the middleware, or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// statusRecorder records the status code while passing writes through.
// It forwards Flush so event streams keep working behind it.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(code int) {
	if !r.wroteHeader {
		r.status = code
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if !r.wroteHeader {
		r.WriteHeader(http.StatusOK)
	}
	return r.ResponseWriter.Write(b)
}

func (r *statusRecorder) Flush() {
	if !r.wroteHeader {
		r.WriteHeader(http.StatusOK)
	}
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// withRequestID assigns a ULID to every request, exposes it in the response
// header and stores it in the request context.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := ids.NewRequestID()
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

// withRecovery turns a handler panic into a 500 so one bad request cannot
// take the process down.
func withRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			requestLogger(r).Error("handler panic",
				"method", r.Method,
				"path", r.URL.Path,
				logging.Err(fmt.Errorf("%v", rec)))
			writeError(w, http.StatusInternalServerError, "Internal server error", "")
		}()
		next.ServeHTTP(w, r)
	})
}

// withInstrumentation logs each request and records HTTP metrics.
func withInstrumentation(sc *ServerContext, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		duration := time.Since(start)
		sc.Metrics().RecordHTTPRequest(r.Context(), r.Method, metricPath(r.URL.Path), rec.status, duration)

		level := slog.LevelInfo
		if rec.status >= http.StatusInternalServerError {
			level = slog.LevelError
		} else if rec.status >= http.StatusBadRequest {
			level = slog.LevelWarn
		}
		requestLogger(r).Log(r.Context(), level, "http request",
			"method", r.Method,
			"path", r.URL.Path,
			logging.Status(fmt.Sprint(rec.status)),
			slog.Duration(logging.KeyDuration, duration))
	})
}

// metricPath collapses unknown paths into one label value.
func metricPath(path string) string {
	switch path {
	case MCPPath, healthzPath, readyzPath, detailedHealthPath:
		return path
	default:
		return "other"
	}
}
