package models

import (
	"fmt"
	"time"
)

// TrackingKey identifies a task by repository name and round.
type TrackingKey struct {
	Name  string
	Round Round
}

func (k TrackingKey) String() string {
	return fmt.Sprintf("%s#%d", k.Name, k.Round)
}

// TrackingEntry records the state of one accepted task.
type TrackingEntry struct {
	Status      TrackingStatus    `json:"status"`
	Error       string            `json:"error,omitempty"`
	Result      *DeploymentResult `json:"result,omitempty"`
	Fingerprint string            `json:"fingerprint,omitempty"`
	UpdatedAt   time.Time         `json:"updated_at"`
}
