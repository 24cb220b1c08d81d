package middleware

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aryan0dhankhar/crm/internal/infrastructure/logger"
	"github.com/aryan0dhankhar/crm/internal/observability/metrics"
	"github.com/aryan0dhankhar/crm/internal/security/audit"
	"github.com/aryan0dhankhar/crm/internal/security/ratelimit"
)

// RequestIDHeader carries the request id in both directions
const RequestIDHeader = "X-Request-ID"

// RequestID attaches a request id to the context and response headers and
// logs every request once it completes. A well-formed incoming id is reused.
func RequestID(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := r.Header.Get(RequestIDHeader)
			if _, err := uuid.Parse(reqID); err != nil {
				reqID = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, reqID)

			ctx := logger.WithRequestID(r.Context(), reqID)
			rec := newRecorder(w)
			start := time.Now()

			next.ServeHTTP(rec, r.WithContext(ctx))

			log.Info("request completed",
				slog.String("request_id", reqID),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", rec.status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

// Recover turns a handler panic into a 500 response
func Recover(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if p := recover(); p != nil {
					log.Error("panic serving request",
						slog.Any("panic", p),
						slog.String("request_id", logger.RequestID(r.Context())),
						slog.String("stack", string(debug.Stack())),
					)
					writeError(w, http.StatusInternalServerError, "Internal Server Error", "An unexpected error occurred")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// CORS answers preflight requests and sets CORS headers for allowed origins
func CORS(allowed []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if originAllowed(allowed, origin) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			}
			w.Header().Add("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Authorization, X-Request-ID")
			w.Header().Set("Access-Control-Expose-Headers", RequestIDHeader)

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func originAllowed(allowed []string, origin string) bool {
	if origin == "" {
		return false
	}
	for _, a := range allowed {
		if a == "*" || a == origin {
			return true
		}
	}
	return false
}

// RateLimit rejects clients that exceed the limiter's window. Only paths under
// prefix are limited so probes and scrapes always get through.
func RateLimit(limiter ratelimit.Allower, prefix string, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasPrefix(r.URL.Path, prefix) {
				next.ServeHTTP(w, r)
				return
			}
			ip := ClientIP(r)
			if !limiter.Allow(r.Context(), ip) {
				metrics.IncRateLimited()
				log.Warn("rate limit exceeded",
					slog.String("client_ip", ip),
					slog.String("path", r.URL.Path),
					slog.String("request_id", logger.RequestID(r.Context())),
				)
				w.Header().Set("Retry-After", "60")
				writeError(w, http.StatusTooManyRequests, "Too Many Requests", "Rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP returns the host part of the connection's remote address
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Audit records every state-changing API request after it has been served
func Audit(auditLog *audit.Logger, prefix, userID string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !isMutation(r.Method) || !strings.HasPrefix(r.URL.Path, prefix+"/") {
				next.ServeHTTP(w, r)
				return
			}
			rec := newRecorder(w)
			next.ServeHTTP(rec, r)

			action, resource, id := DescribeMutation(r.Method, strings.TrimPrefix(r.URL.Path, prefix))
			auditLog.Log(r.Context(), audit.Entry{
				UserID:     userID,
				Action:     action,
				Resource:   resource,
				ResourceID: id,
				Status:     audit.StatusFor(rec.status),
				Details:    http.StatusText(rec.status),
			})
		})
	}
}

func isMutation(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}

// DescribeMutation maps a method and API-relative path such as
// /leads/lead_1/convert to an audit action, resource and id
func DescribeMutation(method, path string) (action, resource, id string) {
	segs := strings.Split(strings.Trim(path, "/"), "/")
	if len(segs) > 1 && segs[0] == "pipeline" {
		segs = segs[1:]
	}
	resource = segs[0]

	switch method {
	case http.MethodPost:
		action = "create"
	case http.MethodPut, http.MethodPatch:
		action = "update"
	case http.MethodDelete:
		action = "delete"
	}

	if len(segs) > 1 {
		id = segs[1]
	}
	if len(segs) > 2 {
		action = segs[2]
	}
	switch {
	case resource == "stages" && id == "reorder":
		action, id = "reorder", ""
	case action == "stage":
		action = "move_stage"
	}
	return action, resource, id
}

// recorder captures the status code written by the wrapped handler
type recorder struct {
	http.ResponseWriter
	status int
}

func newRecorder(w http.ResponseWriter) *recorder {
	return &recorder{ResponseWriter: w, status: http.StatusOK}
}

func (r *recorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *recorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func writeError(w http.ResponseWriter, status int, title, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": title, "message": message})
}
