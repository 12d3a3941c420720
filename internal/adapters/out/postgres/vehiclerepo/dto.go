package vehiclerepo

import (
	"time"

	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/core/domain/model/vehicle"

	"github.com/google/uuid"
)

type VehicleDTO struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey"`
	VehicleNumber      string    `gorm:"uniqueIndex;not null"`
	VehicleType        string    `gorm:"not null"`
	Capacity           float64   `gorm:"not null"`
	Status             int       `gorm:"type:smallint;not null;index"`
	CurrentLocationLat *float64
	CurrentLocationLng *float64
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (VehicleDTO) TableName() string {
	return "vehicles"
}

func fromDomain(v *vehicle.Vehicle) VehicleDTO {
	dto := VehicleDTO{
		ID:            v.ID().Raw(),
		VehicleNumber: v.Number(),
		VehicleType:   v.Kind(),
		Capacity:      v.Capacity(),
		Status:        int(v.Status()),
	}
	if loc := v.Location(); loc != nil {
		lat, lng := loc.Lat(), loc.Lng()
		dto.CurrentLocationLat = &lat
		dto.CurrentLocationLng = &lng
	}
	return dto
}

func toDomain(dto VehicleDTO) (*vehicle.Vehicle, error) {
	id, err := kernel.UUIDFromRaw(dto.ID)
	if err != nil {
		return nil, err
	}

	var location *kernel.GeoPoint
	if dto.CurrentLocationLat != nil && dto.CurrentLocationLng != nil {
		p, pointErr := kernel.NewGeoPoint(*dto.CurrentLocationLat, *dto.CurrentLocationLng)
		if pointErr != nil {
			return nil, pointErr
		}
		location = &p
	}

	return vehicle.RestoreVehicle(
		id,
		dto.VehicleNumber,
		dto.VehicleType,
		dto.Capacity,
		vehicle.Status(dto.Status),
		location,
	)
}
