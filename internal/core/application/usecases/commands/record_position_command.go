package commands

import (
	"errors"

	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/core/domain/model/tracking"
	"fleet/internal/pkg/guard"
)

var ErrRecordPositionCommandIsNotConstructed = errors.New(
	"RecordPositionCommand must be created via NewRecordPositionCommand constructor",
)

// RecordPositionCommand is one position report for a delivery in transit.
// The timestamp is always assigned by the server.
type RecordPositionCommand struct {
	actor      kernel.Actor
	deliveryID kernel.UUID
	reading    tracking.Reading

	guard guard.ConstructorGuard
}

// NewRecordPositionCommand validates coordinates, speed (km/h, non-negative) and
// heading (degrees, 0 to 360).
func NewRecordPositionCommand(
	actor kernel.Actor,
	deliveryID kernel.UUID,
	lat, lng float64,
	speed, heading *float64,
) (RecordPositionCommand, error) {
	if err := requireRole(actor, "report position", kernel.RoleDriver, kernel.RoleAdmin); err != nil {
		return RecordPositionCommand{}, err
	}

	reading, readingErr := tracking.NewReading(lat, lng, speed, heading)
	if err := errors.Join(deliveryID.Validate(), readingErr); err != nil {
		return RecordPositionCommand{}, err
	}

	return RecordPositionCommand{
		actor:      actor,
		deliveryID: deliveryID,
		reading:    reading,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func (c RecordPositionCommand) Validate() error {
	return c.guard.Validate(ErrRecordPositionCommandIsNotConstructed)
}

func (c RecordPositionCommand) Actor() kernel.Actor { return c.actor }

func (c RecordPositionCommand) DeliveryID() kernel.UUID { return c.deliveryID }

func (c RecordPositionCommand) Reading() tracking.Reading { return c.reading }
