package models

import "go.trai.ch/zerr"

var (
	// ErrValidation is returned for missing or malformed request fields.
	ErrValidation = zerr.New("invalid request")

	// ErrUnauthorized is returned when the shared secret does not match.
	ErrUnauthorized = zerr.New("invalid secret")

	// ErrUnresolvedTaskName is returned when a round-2 request has no task name and none was recorded.
	ErrUnresolvedTaskName = zerr.New("no previous task recorded for requester")

	// ErrRepositoryEmpty is returned when a repository has no commits.
	ErrRepositoryEmpty = zerr.New("repository has no commits")

	// ErrNotifyStatus is returned when the evaluator responds with a non-2xx status.
	ErrNotifyStatus = zerr.New("evaluation endpoint rejected payload")
)
