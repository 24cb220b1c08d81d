package metrics

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// entity ids look like lead_01HV... or stage_3
var idSegment = regexp.MustCompile(`^[a-z]+_[0-9A-Za-z]+$`)

// HTTPMetricsMiddleware instruments requests with Prometheus metrics
func HTTPMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)
		dur := time.Since(start)
		ObserveHTTPRequest(r.Method, RouteLabel(r.URL.Path), strconv.Itoa(ww.status), dur)
	})
}

// RouteLabel replaces entity ids in path with :id to bound label cardinality
func RouteLabel(path string) string {
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		if idSegment.MatchString(seg) {
			segments[i] = ":id"
		}
	}
	return strings.Join(segments, "/")
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
