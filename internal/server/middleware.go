package server

import (
	"fmt"
	"net/http"
	"time"
)

func (s *Server) withMiddleware(handler http.Handler) http.Handler {
	// Innermost first: recovery must see panics from the handlers themselves
	handler = s.recoverPanics(handler)
	handler = s.logRequests(handler)
	return handler
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		evt := s.app.Logger.Debug()
		if rec.status >= http.StatusInternalServerError {
			evt = s.app.Logger.Warn()
		}
		evt.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("elapsed", time.Since(started)).
			Msg("HTTP request")
	})
}

func (s *Server) recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				s.app.Logger.Error().
					Str("panic", fmt.Sprint(v)).
					Str("path", r.URL.Path).
					Msg("PANIC RECOVERED in HTTP handler")
				http.Error(w, "Internal server error", http.StatusInternalServerError)
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// statusRecorder remembers the status code written by the handler chain.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}
