package queries

import (
	"context"

	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/core/domain/model/tracking"
)

// LoadLatestShared exposes the shared latest-position read to external tests.
func (h GetLatestPositionQueryHandler) LoadLatestShared(
	ctx context.Context,
	deliveryID kernel.UUID,
) (tracking.Payload, bool, error) {
	result, err := h.shared(ctx, deliveryID)
	return result.payload, result.found, err
}
