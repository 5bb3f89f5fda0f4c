package models

// Attachment is a named resource supplied with a task, usually a data URI.
type Attachment struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url" yaml:"url"`
}

// TaskRequest is one accepted unit of work. TaskName may be empty on round 2.
type TaskRequest struct {
	RequesterID   string       `json:"email"`
	Secret        string       `json:"-"`
	TaskName      string       `json:"task"`
	Round         Round        `json:"round"`
	Nonce         string       `json:"nonce"`
	Brief         string       `json:"brief"`
	Checks        []string     `json:"checks"`
	EvaluationURL string       `json:"evaluation_url"`
	Attachments   []Attachment `json:"attachments"`
	// Files, when set, is published as-is and the generator is skipped.
	Files FileSet `json:"files,omitempty"`
}

// EvaluationPayload is the completion report posted to the evaluator.
type EvaluationPayload struct {
	RequesterID string `json:"email"`
	TaskName    string `json:"task"`
	Round       Round  `json:"round"`
	Nonce       string `json:"nonce"`
	DeploymentResult
}

// NewEvaluationPayload combines a request with its deployment outcome.
func NewEvaluationPayload(req TaskRequest, taskName string, result DeploymentResult) EvaluationPayload {
	return EvaluationPayload{
		RequesterID:      req.RequesterID,
		TaskName:         taskName,
		Round:            req.Round,
		Nonce:            req.Nonce,
		DeploymentResult: result,
	}
}
