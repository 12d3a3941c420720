package ports

import (
	"context"
	"time"

	"fleet/internal/core/domain/model/tracking"
)

// TrackingRepository stores immutable tracking samples.
type TrackingRepository interface {
	// Add inserts a sample. Samples are never updated.
	Add(ctx context.Context, sample *tracking.Sample) error

	// PurgeOlderThan deletes samples recorded before cutoff and returns how many were removed.
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
