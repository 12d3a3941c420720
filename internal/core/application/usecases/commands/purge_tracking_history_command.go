package commands

import (
	"errors"
	"time"

	"fleet/internal/pkg/errs"
	"fleet/internal/pkg/guard"
)

var ErrPurgeTrackingHistoryCommandIsNotConstructed = errors.New(
	"PurgeTrackingHistoryCommand must be created via NewPurgeTrackingHistoryCommand constructor",
)

// PurgeTrackingHistoryCommand deletes tracking samples older than a cutoff.
// It runs from the retention job, outside any request.
type PurgeTrackingHistoryCommand struct {
	olderThan time.Time

	guard guard.ConstructorGuard
}

func NewPurgeTrackingHistoryCommand(olderThan time.Time) (PurgeTrackingHistoryCommand, error) {
	if olderThan.IsZero() {
		return PurgeTrackingHistoryCommand{}, errs.NewValueIsRequiredError("older_than")
	}

	return PurgeTrackingHistoryCommand{
		olderThan: olderThan.UTC(),
		guard:     guard.NewConstructorGuard(),
	}, nil
}

// NewPurgeTrackingHistoryCommandForRetention computes the cutoff as now minus retention.
func NewPurgeTrackingHistoryCommandForRetention(now time.Time, retention time.Duration) (PurgeTrackingHistoryCommand, error) {
	if retention <= 0 {
		return PurgeTrackingHistoryCommand{}, errs.NewValueIsOutOfRangeError("retention", retention, "1ns", "unbounded")
	}
	return NewPurgeTrackingHistoryCommand(now.Add(-retention))
}

func (c PurgeTrackingHistoryCommand) Validate() error {
	return c.guard.Validate(ErrPurgeTrackingHistoryCommandIsNotConstructed)
}

func (c PurgeTrackingHistoryCommand) OlderThan() time.Time { return c.olderThan }
