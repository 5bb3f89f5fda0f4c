package server

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"llmdeploy/internal/api"
	"llmdeploy/internal/models"
)

var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

func validateEmail(email string) bool {
	return emailRegex.MatchString(email)
}

func validateCallbackURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return badRequestCode(fmt.Errorf("evaluation_url must be an absolute http(s) URL"), ErrCodeInvalidURL)
	}
	return nil
}

func requireField(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return badRequestCode(fmt.Errorf("%s is required", name), ErrCodeMissingRequired)
	}
	return nil
}

// taskRequestFromAPI validates an inbound body and converts it. Task may be
// empty on round 2; the orchestrator resolves it.
func taskRequestFromAPI(body api.TaskSubmitRequest) (models.TaskRequest, error) {
	email := strings.TrimSpace(body.Email)
	if err := requireField("email", email); err != nil {
		return models.TaskRequest{}, err
	}
	if !validateEmail(email) {
		return models.TaskRequest{}, badRequestCode(fmt.Errorf("invalid email: %s", email), ErrCodeInvalidEmail)
	}

	round := models.Round(body.Round)
	if !models.IsValidRound(round) {
		return models.TaskRequest{}, badRequestCode(fmt.Errorf("round must be 1 or 2"), ErrCodeInvalidRound)
	}
	if round == models.RoundCreate {
		if err := requireField("task", body.Task); err != nil {
			return models.TaskRequest{}, err
		}
	}
	required := []struct{ name, value string }{
		{"nonce", body.Nonce},
		{"brief", body.Brief},
		{"evaluation_url", body.EvaluationURL},
	}
	for _, field := range required {
		if err := requireField(field.name, field.value); err != nil {
			return models.TaskRequest{}, err
		}
	}
	if err := validateCallbackURL(strings.TrimSpace(body.EvaluationURL)); err != nil {
		return models.TaskRequest{}, err
	}
	for i, a := range body.Attachments {
		if strings.TrimSpace(a.URL) == "" {
			return models.TaskRequest{}, badRequestCode(fmt.Errorf("attachments[%d].url is required", i), ErrCodeMissingRequired)
		}
	}

	checks := body.Checks
	if checks == nil {
		checks = []string{}
	}
	var files models.FileSet
	if len(body.Files) > 0 {
		files = models.FileSet(body.Files)
	}

	return models.TaskRequest{
		RequesterID:   email,
		Secret:        body.Secret,
		TaskName:      strings.TrimSpace(body.Task),
		Round:         round,
		Nonce:         body.Nonce,
		Brief:         body.Brief,
		Checks:        checks,
		EvaluationURL: strings.TrimSpace(body.EvaluationURL),
		Attachments:   body.Attachments,
		Files:         files,
	}, nil
}

func parseTrackingKey(rawName, rawRound string) (models.TrackingKey, error) {
	name := models.CanonicalName(rawName)
	if name == "" {
		return models.TrackingKey{}, badRequestCode(fmt.Errorf("invalid task name"), ErrCodeInvalidName)
	}
	round, err := models.ParseRound(rawRound)
	if err != nil {
		return models.TrackingKey{}, badRequestCode(err, ErrCodeInvalidRound)
	}
	return models.TrackingKey{Name: name, Round: round}, nil
}
