package middleware

import (
	"log/slog"
	"net/http"
	"time"
)

// responseInfo wraps http.ResponseWriter to capture the status code and
// the number of bytes written.
type responseInfo struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *responseInfo) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseInfo) Write(p []byte) (int, error) {
	n, err := r.ResponseWriter.Write(p)
	r.bytes += n
	return n, err
}

// RequestLogger returns middleware that logs one line per request.
// Server errors log at error level, client errors at warn. Health checks
// are skipped to keep uptime probes out of the logs.
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	logger = logger.With("component", "http")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/health" {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			info := &responseInfo{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(info, r)

			level := slog.LevelInfo
			if info.status >= 500 {
				level = slog.LevelError
			} else if info.status >= 400 {
				level = slog.LevelWarn
			}

			logger.LogAttrs(r.Context(), level, "request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", info.status),
				slog.Int("bytes", info.bytes),
				slog.Duration("duration", time.Since(start)),
				slog.String("remote", RealIP(r)),
			)
		})
	}
}
