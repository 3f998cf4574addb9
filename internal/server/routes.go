package server

import (
	"net/http"
	"strings"
)

// setupRoutes registers the API routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.app.APIHandler.HealthHandler)
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)

	mux.HandleFunc("/api/status", s.app.WorkerHandler.StatusHandler)
	mux.HandleFunc("/api/run/creation", s.app.WorkerHandler.RunCreationHandler)

	mux.HandleFunc("/api/tasks/", s.app.TaskHandler.StatusHandler)
	mux.HandleFunc("/api/sources", s.app.SourceHandler.SourcesHandler)

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") || r.URL.Path != "/" {
			s.app.APIHandler.NotFoundHandler(w, r)
			return
		}
		s.app.APIHandler.HealthHandler(w, r)
	})

	return mux
}
