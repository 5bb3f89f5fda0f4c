package api

import (
	"time"

	"llmdeploy/internal/models"
)

// TaskSubmitRequest is the inbound task body. The yaml tags let the CLI read
// request files in either format.
type TaskSubmitRequest struct {
	Email         string              `json:"email" yaml:"email"`
	Secret        string              `json:"secret" yaml:"secret"`
	Task          string              `json:"task" yaml:"task"`
	Round         int                 `json:"round" yaml:"round"`
	Nonce         string              `json:"nonce" yaml:"nonce"`
	Brief         string              `json:"brief" yaml:"brief"`
	Checks        []string            `json:"checks" yaml:"checks"`
	EvaluationURL string              `json:"evaluation_url" yaml:"evaluation_url"`
	Attachments   []models.Attachment `json:"attachments" yaml:"attachments"`
	Files         map[string]string   `json:"files,omitempty" yaml:"files,omitempty"`
}

// SubmitResponse acknowledges a task: "accepted" or "duplicate".
type SubmitResponse struct {
	Status string `json:"status"`
}

// TrackingResponse reports the state of one (task, round).
type TrackingResponse struct {
	Name        string                   `json:"name"`
	Round       int                      `json:"round"`
	Status      string                   `json:"status"`
	Error       string                   `json:"error,omitempty"`
	Result      *models.DeploymentResult `json:"result,omitempty"`
	Fingerprint string                   `json:"fingerprint,omitempty"`
	UpdatedAt   time.Time                `json:"updated_at"`
}

// HealthResponse is served on /health.
type HealthResponse struct {
	Status   string `json:"status"`
	Endpoint string `json:"endpoint"`
}

// ErrorResponse is a generic JSON error wrapper.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	ErrorCode int    `json:"error_code,omitempty"`
}
