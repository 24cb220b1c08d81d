package middleware

import (
	"log/slog"
	"mime"
	"net/http"
)

// ValidateJSONContentType rejects POST/PUT/PATCH bodies that are not declared as JSON
func ValidateJSONContentType(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost && r.Method != http.MethodPut && r.Method != http.MethodPatch {
				next.ServeHTTP(w, r)
				return
			}

			// bodiless actions such as convert carry no content type
			if r.ContentLength == 0 {
				next.ServeHTTP(w, r)
				return
			}

			contentType := r.Header.Get("Content-Type")
			mediaType, _, err := mime.ParseMediaType(contentType)
			if err != nil || mediaType != "application/json" {
				log.Warn("invalid content type",
					slog.String("path", r.URL.Path),
					slog.String("content_type", contentType),
					slog.String("method", r.Method),
				)
				writeError(w, http.StatusUnsupportedMediaType, "Unsupported Media Type", "Content-Type must be application/json")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
