// Package ports defines the contracts between the fleet core and its adapters.
// Repositories are bound to a unit of work; relay, event publisher and cache
// ports are best-effort collaborators invoked after a transaction commits.
package ports

import (
	"context"

	"fleet/internal/core/domain/model/delivery"
	"fleet/internal/core/domain/model/kernel"
)

// DeliveryRepository defines the persistence contract for delivery aggregates.
type DeliveryRepository interface {
	// Add persists a new delivery. The aggregate's version becomes 1.
	Add(ctx context.Context, aggregate *delivery.Delivery) error

	// Update writes the aggregate guarded by the status and version it was loaded with.
	// When another writer got there first no row matches and an
	// errs.VersionIsInvalidError is returned; the caller must re-read.
	Update(ctx context.Context, aggregate *delivery.Delivery) error

	// Get retrieves a delivery by id or returns errs.ObjectNotFoundError.
	Get(ctx context.Context, id kernel.UUID) (*delivery.Delivery, error)

	// Delete removes a pending delivery, guarded the same way as Update.
	Delete(ctx context.Context, aggregate *delivery.Delivery) error

	// GetActiveHolding returns deliveries in assigned, on_route or picked_up that
	// reference the given driver or vehicle. Nil arguments are ignored; when both
	// are nil the result is empty.
	//
	// Example:
	//   active, err := repo.GetActiveHolding(ctx, &driverID, &vehicleID)
	//   if err != nil {
	//       return err
	//   }
	//   err = services.NewConflictDetector().Check(req, active)
	GetActiveHolding(ctx context.Context, driverID, vehicleID *kernel.UUID) ([]*delivery.Delivery, error)
}
