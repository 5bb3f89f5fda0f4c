package api

import (
	"fmt"
	"net/http"
)

// APIError is the decoded failure of a call to the llmdeploy intake server.
// Code is the coarse class ("invalid_argument", "unauthorized", "not_found",
// "internal") and ErrorCode the numeric detail the server assigned.
type APIError struct {
	Status    int
	Code      string
	ErrorCode int
	Message   string
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	if e.Code != "" && e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Status > 0 {
		return fmt.Sprintf("llmdeploy server: %d %s", e.Status, http.StatusText(e.Status))
	}
	return "llmdeploy server error"
}

// Rejected reports whether the server refused the task request itself,
// as opposed to failing while handling it.
func (e *APIError) Rejected() bool {
	return e != nil && e.Status >= 400 && e.Status < 500
}

// ServerFault reports a failure on the server side; the request may succeed if resubmitted.
func (e *APIError) ServerFault() bool {
	return e != nil && e.Status >= 500
}

// FromLLMDeploy reports whether the response carried the server's error envelope.
// A bare status with no code usually means the URL points at something else.
func (e *APIError) FromLLMDeploy() bool {
	return e != nil && e.Code != ""
}
