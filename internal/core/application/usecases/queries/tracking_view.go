package queries

import (
	"database/sql"
	"time"

	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/core/domain/model/tracking"

	"github.com/google/uuid"
)

const sampleColumns = `t.delivery_id, t.current_lat, t.current_lng, t.speed, t.heading, t.recorded_at`

func scanPayload(row scanner, extra ...any) (tracking.Payload, error) {
	var (
		payload        tracking.Payload
		deliveryID     uuid.UUID
		speed, heading sql.NullFloat64
		recordedAt     time.Time
	)

	dest := []any{&deliveryID, &payload.Lat, &payload.Lng, &speed, &heading, &recordedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return tracking.Payload{}, err
	}

	id, err := kernel.UUIDFromRaw(deliveryID)
	if err != nil {
		return tracking.Payload{}, err
	}
	payload.DeliveryID = id
	payload.Speed = nullFloat(speed)
	payload.Heading = nullFloat(heading)
	payload.Timestamp = recordedAt.UTC()
	return payload, nil
}
