package commands

import (
	"context"

	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/core/domain/model/vehicle"
	"fleet/internal/core/ports"
)

// VehicleLedger applies the coarse vehicle status side effects of delivery changes.
// Writes are idempotent: a vehicle already in the target status is not written again.
// It validates nothing against delivery state, so an admin may still force maintenance.
type VehicleLedger struct {
	repo ports.VehicleRepository
}

func NewVehicleLedger(repo ports.VehicleRepository) VehicleLedger {
	return VehicleLedger{repo: repo}
}

func (l VehicleLedger) MarkInUse(ctx context.Context, id kernel.UUID) error {
	return l.apply(ctx, id, (*vehicle.Vehicle).MarkInUse)
}

func (l VehicleLedger) MarkAvailable(ctx context.Context, id kernel.UUID) error {
	return l.apply(ctx, id, (*vehicle.Vehicle).MarkAvailable)
}

func (l VehicleLedger) MarkMaintenance(ctx context.Context, id kernel.UUID) error {
	return l.apply(ctx, id, (*vehicle.Vehicle).MarkMaintenance)
}

// Release is the terminal-transition side effect: in_use becomes available,
// anything else is left alone.
func (l VehicleLedger) Release(ctx context.Context, id kernel.UUID) error {
	return l.apply(ctx, id, (*vehicle.Vehicle).Release)
}

// UpdateLocation is unrelated to status and never reads the vehicle first.
func (l VehicleLedger) UpdateLocation(ctx context.Context, id kernel.UUID, point kernel.GeoPoint) error {
	return l.repo.UpdateLocation(ctx, id, point)
}

func (l VehicleLedger) apply(ctx context.Context, id kernel.UUID, change func(*vehicle.Vehicle) bool) error {
	v, err := l.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if !change(v) {
		return nil
	}
	return l.repo.UpdateStatus(ctx, v)
}
