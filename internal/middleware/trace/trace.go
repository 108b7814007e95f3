// Package trace tags every request with an ID and logs its outcome.
package trace

import (
	"context"
	"net/http"
	"regexp"
	"time"

	"github.com/google/uuid"

	applog "moviechart/internal/log"
)

// ContextKey type for context keys
type ContextKey string

const (
	// RequestIDKey is the context key for request ID
	RequestIDKey ContextKey = "request_id"

	// HeaderRequestID carries the ID in both directions.
	HeaderRequestID = "X-Request-ID"
)

// incoming IDs are accepted only if they look harmless in logs
var validRequestID = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

// Middleware assigns a request ID, stores a request-scoped logger in the
// context and logs method, path, status and duration once the handler
// returns.
func Middleware(extractIP func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := r.Header.Get(HeaderRequestID)
			if !validRequestID.MatchString(requestID) {
				requestID = GenerateRequestID()
			}
			w.Header().Set(HeaderRequestID, requestID)

			clientIP := ""
			if extractIP != nil {
				clientIP = extractIP(r)
			}

			logger := applog.FromContext(r.Context()).
				WithComponent(applog.ComponentHTTP).
				With(applog.FieldRequestID, requestID)

			ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
			ctx = applog.NewContext(ctx, logger)
			r = r.WithContext(ctx)

			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(rw, r)

			fields := applog.NewFields().
				WithHTTPResponse(r.Method, r.URL.Path, rw.statusCode, time.Since(start).Milliseconds())
			fields["client_ip"] = clientIP
			args := fields.ToSlice()

			switch {
			case rw.statusCode >= 500:
				logger.ErrorContext(ctx, "HTTP request completed", args...)
			case rw.statusCode >= 400:
				logger.WarnContext(ctx, "HTTP request completed", args...)
			default:
				logger.InfoContext(ctx, "HTTP request completed", args...)
			}
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

// GenerateRequestID creates a unique request ID for tracing
func GenerateRequestID() string {
	return "req_" + uuid.NewString()
}

// GetRequestID extracts the request ID from context
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}
