package server

import (
	"context"
	"net"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/brightops/bright-gateway/internal/audit"
	"github.com/brightops/bright-gateway/internal/envelope"
	"github.com/brightops/bright-gateway/internal/tenant"
)

// HeaderTraceID carries the caller-supplied trace id; one is minted
// when absent. The response always echoes it back.
const HeaderTraceID = "X-Trace-Id"

// TraceIDMiddleware installs the request's trace id into context and
// the response headers.
func TraceIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get(HeaderTraceID)
		if traceID == "" {
			traceID = uuid.NewString()
		}
		w.Header().Set(HeaderTraceID, traceID)
		ctx := envelope.WithTraceID(r.Context(), traceID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestLogMiddleware is the guaranteed trailing stage: it recovers
// panics into a 500 envelope and writes exactly one durable request log
// row per request, whatever the outcome. It must sit inside the tenant
// holder middleware so the row can carry an already-resolved tenant.
func RequestLogMiddleware(recorder *audit.Recorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}

			defer func() {
				if rec := recover(); rec != nil {
					debug.PrintStack()
					if !wrapped.wrote {
						envelope.Failure(wrapped, r, http.StatusInternalServerError,
							"INTERNAL_ERROR", "Ichki xatolik yuz berdi.")
					}
				}

				entry := &audit.RequestLogEntry{
					TraceID:    envelope.TraceID(r.Context()),
					Method:     r.Method,
					Path:       r.URL.Path,
					StatusCode: wrapped.status,
					DurationMS: time.Since(start).Milliseconds(),
					IP:         clientIP(r),
					UserAgent:  r.UserAgent(),
				}
				if tc := tenant.Peek(r); tc != nil {
					entry.TenantID = tc.TenantID
					entry.UserID = tc.UserID
				}
				recorder.LogRequest(r.Context(), entry)
			}()

			next.ServeHTTP(wrapped, r)
		})
	}
}

// TimeoutMiddleware bounds handler execution via request context.
func TimeoutMiddleware(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// statusWriter captures the status code written by the handler.
type statusWriter struct {
	http.ResponseWriter
	status int
	wrote  bool
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.wrote = true
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	w.wrote = true
	return w.ResponseWriter.Write(b)
}

func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
