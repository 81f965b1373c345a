package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/okian/waitcast/pkg/metrics"
)

// errorClass labels an error status for the error counters. Unlisted 4xx
// statuses fall back to client_error and 5xx to server_error.
var errorClass = map[int]struct{ kind, severity string }{
	http.StatusBadRequest:            {"invalid_input", "low"},
	http.StatusNotFound:              {"not_found", "low"},
	http.StatusMethodNotAllowed:      {"method_not_allowed", "low"},
	http.StatusRequestEntityTooLarge: {"body_too_large", "low"},
	http.StatusTooManyRequests:       {"backpressure", "medium"},
	http.StatusBadGateway:            {"model_inference", "high"},
	http.StatusServiceUnavailable:    {"unavailable", "medium"},
}

// MetricsMiddleware records request count, latency and error class for
// endpoint.
func MetricsMiddleware(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		code := strconv.Itoa(sw.status)
		metrics.RecordHTTPRequest(endpoint, r.Method, code)
		metrics.RecordHTTPRequestDuration(endpoint, r.Method, code, float64(time.Since(start).Microseconds())/1000)

		if sw.status < http.StatusBadRequest {
			return
		}
		kind, severity := classifyStatus(sw.status)
		metrics.RecordErrorByEndpoint(endpoint, r.Method, kind)
		metrics.RecordErrorByType(kind, severity)
	}
}

func classifyStatus(status int) (kind, severity string) {
	if c, ok := errorClass[status]; ok {
		return c.kind, c.severity
	}
	if status >= http.StatusInternalServerError {
		return "server_error", "high"
	}
	return "client_error", "low"
}

// statusWriter remembers the status written by the wrapped handler.
type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (sw *statusWriter) WriteHeader(code int) {
	if !sw.wroteHeader {
		sw.status = code
		sw.wroteHeader = true
	}
	sw.ResponseWriter.WriteHeader(code)
}

func (sw *statusWriter) Write(b []byte) (int, error) {
	sw.wroteHeader = true
	return sw.ResponseWriter.Write(b)
}
