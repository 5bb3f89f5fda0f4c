package server

import (
	"net/http"

	"llmdeploy/internal/api"
)

// handleHealth reports liveness and where task requests are accepted.
// GitHub and the LLM backend are not contacted.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, api.HealthResponse{Status: "ok", Endpoint: s.endpointPath})
}
