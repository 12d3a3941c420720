// Package trackingrepo stores position samples. Rows are insert-only.
package trackingrepo

import (
	"errors"
	"time"

	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/core/domain/model/tracking"

	"github.com/google/uuid"
)

type SampleDTO struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey"`
	DeliveryID uuid.UUID  `gorm:"type:uuid;not null;index:idx_tracking_delivery_recorded,priority:1"`
	DriverID   *uuid.UUID `gorm:"type:uuid"`
	VehicleID  *uuid.UUID `gorm:"type:uuid"`
	CurrentLat float64    `gorm:"not null"`
	CurrentLng float64    `gorm:"not null"`
	Speed      *float64
	Heading    *float64
	RecordedAt time.Time `gorm:"not null;index:idx_tracking_delivery_recorded,priority:2,sort:desc"`
}

func (SampleDTO) TableName() string {
	return "tracking"
}

func fromDomain(s *tracking.Sample) SampleDTO {
	return SampleDTO{
		ID:         s.ID().Raw(),
		DeliveryID: s.DeliveryID().Raw(),
		DriverID:   kernel.RawPtr(s.DriverID()),
		VehicleID:  kernel.RawPtr(s.VehicleID()),
		CurrentLat: s.Position().Lat(),
		CurrentLng: s.Position().Lng(),
		Speed:      s.Speed(),
		Heading:    s.Heading(),
		RecordedAt: s.RecordedAt(),
	}
}

func toDomain(dto SampleDTO) (*tracking.Sample, error) {
	id, idErr := kernel.UUIDFromRaw(dto.ID)
	deliveryID, deliveryErr := kernel.UUIDFromRaw(dto.DeliveryID)
	driverID, driverErr := kernel.UUIDPtrFromRaw(dto.DriverID)
	vehicleID, vehicleErr := kernel.UUIDPtrFromRaw(dto.VehicleID)
	reading, readingErr := tracking.NewReading(dto.CurrentLat, dto.CurrentLng, dto.Speed, dto.Heading)
	if err := errors.Join(idErr, deliveryErr, driverErr, vehicleErr, readingErr); err != nil {
		return nil, err
	}

	return tracking.RestoreSample(id, deliveryID, driverID, vehicleID, reading, dto.RecordedAt)
}
