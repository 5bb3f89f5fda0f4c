package server

import (
	"net/http"
)

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	// Health check.
	mux.HandleFunc("GET /health", s.handleHealth)

	// Task intake.
	mux.HandleFunc("POST "+s.endpointPath, s.handleSubmitTask)

	// Tracking.
	mux.Handle("GET /v1/tasks/{name}/rounds/{round}", s.withAuth(http.HandlerFunc(s.handleTaskStatus)))

	return mux
}
