package transport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

const sessionHeader = "Mcp-Session-Id"

// RequestLogger logs every request at debug level with its MCP session id.
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			sessionID := r.Header.Get(sessionHeader)
			if sessionID == "" {
				sessionID = ww.Header().Get(sessionHeader)
			}
			logger.Debug("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"session_id", sessionID,
				"elapsed", time.Since(start),
			)
		})
	}
}
