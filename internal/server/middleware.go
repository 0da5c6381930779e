package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// requestLogger attaches a request-scoped logger to the context and
// logs one line per request with status and latency.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqLog := s.log.With().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Logger()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r.WithContext(reqLog.WithContext(r.Context())))

		reqLog.Debug().
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request handled")
	})
}
