// Package tracking records accepted tasks and the last task name used by each requester.
package tracking

import (
	"context"

	"llmdeploy/internal/models"
)

// Store is the tracking table plus the requester → task name table.
// Implementations must be safe for concurrent use.
type Store interface {
	Get(ctx context.Context, key models.TrackingKey) (models.TrackingEntry, bool, error)
	Set(ctx context.Context, key models.TrackingKey, entry models.TrackingEntry) error
	Has(ctx context.Context, key models.TrackingKey) (bool, error)

	LastTaskName(ctx context.Context, requesterID string) (string, bool, error)
	SetLastTaskName(ctx context.Context, requesterID, taskName string) error

	Close() error
}
