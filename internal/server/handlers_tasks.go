package server

import (
	"fmt"
	"net/http"

	"llmdeploy/internal/api"
	"llmdeploy/internal/models"
)

func (s *Server) handleSubmitTask(w http.ResponseWriter, r *http.Request) {
	var body api.TaskSubmitRequest
	if !s.decodeJSONReq(w, r, &body) {
		return
	}
	if !s.verifier.Verify(body.Secret) {
		s.writeErrorReq(w, r, http.StatusUnauthorized, unauthorized(models.ErrUnauthorized))
		return
	}

	req, err := taskRequestFromAPI(body)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	outcome, key, err := s.orch.Submit(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.log().Debug("task submitted", "key", key.String(), "outcome", outcome)
	s.writeJSON(w, http.StatusOK, api.SubmitResponse{Status: string(outcome)})
}

func (s *Server) handleTaskStatus(w http.ResponseWriter, r *http.Request) {
	key, err := parseTrackingKey(r.PathValue("name"), r.PathValue("round"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	entry, ok, err := s.orch.Status(r.Context(), key)
	if err != nil {
		s.writeErrorReq(w, r, http.StatusInternalServerError, storeFailure(err))
		return
	}
	if !ok {
		s.writeErrorReq(w, r, http.StatusNotFound, notFoundCode(fmt.Errorf("task not found: %s", key), ErrCodeTaskNotFound))
		return
	}

	s.writeJSON(w, http.StatusOK, api.TrackingResponse{
		Name:        key.Name,
		Round:       int(key.Round),
		Status:      string(entry.Status),
		Error:       entry.Error,
		Result:      entry.Result,
		Fingerprint: entry.Fingerprint,
		UpdatedAt:   entry.UpdatedAt,
	})
}
