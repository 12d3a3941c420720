package trackingrepo

import (
	"context"
	"time"

	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/core/domain/model/tracking"

	"gorm.io/gorm"
)

// GormTrackingRepository implements TrackingRepository using GORM.
type GormTrackingRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

func NewGormTrackingRepository(db *gorm.DB, tracker aggregateTracker) *GormTrackingRepository {
	return &GormTrackingRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add inserts a sample and tracks it so its PositionRecordedEvent is
// dispatched once the transaction commits.
func (r *GormTrackingRepository) Add(ctx context.Context, sample *tracking.Sample) error {
	if err := sample.Validate(); err != nil {
		return err
	}

	dto := fromDomain(sample)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(sample.ID(), sample)
	return nil
}

// PurgeOlderThan deletes samples recorded strictly before cutoff.
func (r *GormTrackingRepository) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("recorded_at < ?", cutoff.UTC()).Delete(&SampleDTO{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// History returns the samples of one delivery, newest first.
func (r *GormTrackingRepository) History(ctx context.Context, deliveryID kernel.UUID, limit int) ([]*tracking.Sample, error) {
	var dtos []SampleDTO
	if err := r.db.WithContext(ctx).
		Where("delivery_id = ?", deliveryID.Raw()).
		Order("recorded_at DESC").
		Limit(limit).
		Find(&dtos).Error; err != nil {
		return nil, err
	}

	samples := make([]*tracking.Sample, 0, len(dtos))
	for _, dto := range dtos {
		s, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		samples = append(samples, s)
	}
	return samples, nil
}
