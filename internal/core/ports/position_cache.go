package ports

import (
	"context"

	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/core/domain/model/tracking"
)

// LatestPositionCache keeps the freshest sample per delivery.
// Get reports ok=false on a miss; an error means the cache itself is unreachable.
type LatestPositionCache interface {
	Get(ctx context.Context, deliveryID kernel.UUID) (payload tracking.Payload, ok bool, err error)
	Put(ctx context.Context, payload tracking.Payload) error
}
