package deliveryrepo

import (
	"context"
	"errors"

	"fleet/internal/core/domain/model/delivery"
	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormDeliveryRepository implements DeliveryRepository using GORM.
type GormDeliveryRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormDeliveryRepository creates a new GORM delivery repository.
func NewGormDeliveryRepository(db *gorm.DB, tracker aggregateTracker) *GormDeliveryRepository {
	return &GormDeliveryRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new delivery to the database with version 1.
func (r *GormDeliveryRepository) Add(ctx context.Context, aggregate *delivery.Delivery) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	dto.Version = 1
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	aggregate.Persisted(dto.Version)
	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update writes the aggregate only if the row still has the status and
// version the aggregate was read with.
func (r *GormDeliveryRepository) Update(ctx context.Context, aggregate *delivery.Delivery) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).
		Model(&DeliveryDTO{}).
		Where("id = ? AND status = ? AND version = ?", dto.ID, int(aggregate.PersistedStatus()), aggregate.Version()).
		Updates(dto.mutableColumns())
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return r.missOrStale(ctx, aggregate.ID())
	}

	aggregate.Persisted(aggregate.Version() + 1)
	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get retrieves a delivery by ID.
func (r *GormDeliveryRepository) Get(ctx context.Context, id kernel.UUID) (*delivery.Delivery, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto DeliveryDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Raw()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("delivery", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// Delete removes the delivery row guarded like Update. Tracking samples go with it.
func (r *GormDeliveryRepository) Delete(ctx context.Context, aggregate *delivery.Delivery) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	result := r.db.WithContext(ctx).
		Where("id = ? AND status = ? AND version = ?", aggregate.ID().Raw(), int(aggregate.PersistedStatus()), aggregate.Version()).
		Delete(&DeliveryDTO{})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return r.missOrStale(ctx, aggregate.ID())
	}
	return nil
}

// GetActiveHolding returns the active deliveries that reference driverID or vehicleID.
func (r *GormDeliveryRepository) GetActiveHolding(
	ctx context.Context,
	driverID, vehicleID *kernel.UUID,
) ([]*delivery.Delivery, error) {
	if driverID == nil && vehicleID == nil {
		return nil, nil
	}

	query := r.db.WithContext(ctx).Where("status IN ?", statusValues(delivery.ActiveStatuses()))
	switch {
	case driverID != nil && vehicleID != nil:
		query = query.Where("(driver_id = ? OR vehicle_id = ?)", driverID.Raw(), vehicleID.Raw())
	case driverID != nil:
		query = query.Where("driver_id = ?", driverID.Raw())
	default:
		query = query.Where("vehicle_id = ?", vehicleID.Raw())
	}

	var dtos []DeliveryDTO
	if err := query.Order("scheduled_pickup_time").Find(&dtos).Error; err != nil {
		return nil, err
	}

	deliveries := make([]*delivery.Delivery, 0, len(dtos))
	for _, dto := range dtos {
		d, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		deliveries = append(deliveries, d)
	}
	return deliveries, nil
}

// missOrStale tells a vanished row apart from one another writer changed.
func (r *GormDeliveryRepository) missOrStale(ctx context.Context, id kernel.UUID) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&DeliveryDTO{}).Where("id = ?", id.Raw()).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return errs.NewObjectNotFoundError("delivery", id.String())
	}
	return errs.NewVersionIsInvalidError("delivery")
}

func statusValues(statuses []delivery.Status) []int {
	out := make([]int, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, int(s))
	}
	return out
}
