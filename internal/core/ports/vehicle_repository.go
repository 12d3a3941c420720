package ports

import (
	"context"

	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/core/domain/model/vehicle"
)

// VehicleRepository defines the persistence contract for vehicle aggregates.
// Status and location are written independently of each other.
type VehicleRepository interface {
	// Add persists a new vehicle. A duplicate number yields errs.ObjectAlreadyExistsError.
	Add(ctx context.Context, aggregate *vehicle.Vehicle) error

	// Get retrieves a vehicle by id or returns errs.ObjectNotFoundError.
	Get(ctx context.Context, id kernel.UUID) (*vehicle.Vehicle, error)

	// UpdateStatus writes only the status column.
	UpdateStatus(ctx context.Context, aggregate *vehicle.Vehicle) error

	// UpdateLocation overwrites the last known position, last writer wins.
	UpdateLocation(ctx context.Context, id kernel.UUID, point kernel.GeoPoint) error
}
