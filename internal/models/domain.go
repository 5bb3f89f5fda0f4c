package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Round identifies a generation pass.
type Round int

const (
	RoundCreate Round = 1
	RoundUpdate Round = 2
)

// TrackingStatus defines lifecycle states for tracked tasks.
type TrackingStatus string

const (
	StatusProcessing TrackingStatus = "processing"
	StatusCompleted  TrackingStatus = "completed"
	StatusFailed     TrackingStatus = "failed"
)

var validTrackingStatuses = map[TrackingStatus]struct{}{
	StatusProcessing: {},
	StatusCompleted:  {},
	StatusFailed:     {},
}

func IsValidRound(round Round) bool {
	return round == RoundCreate || round == RoundUpdate
}

func IsValidTrackingStatus(status TrackingStatus) bool {
	_, ok := validTrackingStatuses[status]
	return ok
}

func ParseRound(raw string) (Round, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return 0, fmt.Errorf("round is required")
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || !IsValidRound(Round(parsed)) {
		return 0, fmt.Errorf("invalid round: %s", value)
	}
	return Round(parsed), nil
}

func ParseTrackingStatus(raw string) (TrackingStatus, error) {
	value := TrackingStatus(strings.ToLower(strings.TrimSpace(raw)))
	if value == "" {
		return "", fmt.Errorf("status is required")
	}
	if !IsValidTrackingStatus(value) {
		return "", fmt.Errorf("invalid status: %s", value)
	}
	return value, nil
}

// IsTerminal reports whether no further transition is expected.
func (s TrackingStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}
