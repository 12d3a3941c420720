// Package deliveryrepo persists the delivery aggregate.
package deliveryrepo

import (
	"errors"
	"time"

	"fleet/internal/core/domain/model/delivery"
	"fleet/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DeliveryDTO is the row shape of the deliveries table.
type DeliveryDTO struct {
	ID                    uuid.UUID  `gorm:"type:uuid;primaryKey"`
	CustomerID            uuid.UUID  `gorm:"type:uuid;not null;index"`
	DriverID              *uuid.UUID `gorm:"type:uuid;index"`
	VehicleID             *uuid.UUID `gorm:"type:uuid;index"`
	RouteID               *uuid.UUID `gorm:"type:uuid"`
	Pickup                PlaceDTO   `gorm:"embedded;embeddedPrefix:pickup_"`
	Drop                  PlaceDTO   `gorm:"embedded;embeddedPrefix:drop_"`
	ScheduledPickupTime   *time.Time
	ScheduledDeliveryTime *time.Time
	ActualPickupTime      *time.Time
	ActualDeliveryTime    *time.Time
	Priority              int `gorm:"type:smallint;not null"`
	PackageDetails        string
	RequestedVehicleType  string
	Status                int `gorm:"type:smallint;not null;index"`
	Version               int `gorm:"not null"`
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

func (DeliveryDTO) TableName() string {
	return "deliveries"
}

// PlaceDTO is an address with its coordinates, embedded twice in DeliveryDTO.
type PlaceDTO struct {
	Address string  `gorm:"column:location;not null"`
	Lat     float64 `gorm:"column:lat;not null"`
	Lng     float64 `gorm:"column:lng;not null"`
}

func fromDomain(d *delivery.Delivery) DeliveryDTO {
	return DeliveryDTO{
		ID:                    d.ID().Raw(),
		CustomerID:            d.CustomerID().Raw(),
		DriverID:              kernel.RawPtr(d.DriverID()),
		VehicleID:             kernel.RawPtr(d.VehicleID()),
		RouteID:               kernel.RawPtr(d.RouteID()),
		Pickup:                placeFromDomain(d.Pickup()),
		Drop:                  placeFromDomain(d.Drop()),
		ScheduledPickupTime:   d.ScheduledPickup(),
		ScheduledDeliveryTime: d.ScheduledDelivery(),
		ActualPickupTime:      d.ActualPickup(),
		ActualDeliveryTime:    d.ActualDelivery(),
		Priority:              int(d.Priority()),
		PackageDetails:        d.PackageDetails(),
		RequestedVehicleType:  d.RequestedVehicleType(),
		Status:                int(d.Status()),
		Version:               d.Version(),
		CreatedAt:             d.CreatedAt(),
		UpdatedAt:             d.UpdatedAt(),
	}
}

// mutableColumns lists every column an Update may change. A map is used so
// that nil pointers and empty strings are written rather than skipped.
func (dto DeliveryDTO) mutableColumns() map[string]any {
	return map[string]any{
		"driver_id":               dto.DriverID,
		"vehicle_id":              dto.VehicleID,
		"route_id":                dto.RouteID,
		"pickup_location":         dto.Pickup.Address,
		"pickup_lat":              dto.Pickup.Lat,
		"pickup_lng":              dto.Pickup.Lng,
		"drop_location":           dto.Drop.Address,
		"drop_lat":                dto.Drop.Lat,
		"drop_lng":                dto.Drop.Lng,
		"scheduled_pickup_time":   dto.ScheduledPickupTime,
		"scheduled_delivery_time": dto.ScheduledDeliveryTime,
		"actual_pickup_time":      dto.ActualPickupTime,
		"actual_delivery_time":    dto.ActualDeliveryTime,
		"priority":                dto.Priority,
		"package_details":         dto.PackageDetails,
		"requested_vehicle_type":  dto.RequestedVehicleType,
		"status":                  dto.Status,
		"version":                 gorm.Expr("version + 1"),
		"updated_at":              dto.UpdatedAt,
	}
}

func placeFromDomain(p kernel.Place) PlaceDTO {
	return PlaceDTO{
		Address: p.Address(),
		Lat:     p.Point().Lat(),
		Lng:     p.Point().Lng(),
	}
}

func (p PlaceDTO) toDomain() (kernel.Place, error) {
	return kernel.NewPlaceFromCoordinates(p.Address, p.Lat, p.Lng)
}

func toDomain(dto DeliveryDTO) (*delivery.Delivery, error) {
	id, err := kernel.UUIDFromRaw(dto.ID)
	if err != nil {
		return nil, err
	}
	customerID, err := kernel.UUIDFromRaw(dto.CustomerID)
	if err != nil {
		return nil, err
	}
	driverID, driverErr := kernel.UUIDPtrFromRaw(dto.DriverID)
	vehicleID, vehicleErr := kernel.UUIDPtrFromRaw(dto.VehicleID)
	routeID, routeErr := kernel.UUIDPtrFromRaw(dto.RouteID)
	pickup, pickupErr := dto.Pickup.toDomain()
	drop, dropErr := dto.Drop.toDomain()
	if err = errors.Join(driverErr, vehicleErr, routeErr, pickupErr, dropErr); err != nil {
		return nil, err
	}

	return delivery.RestoreDelivery(delivery.RestoreParams{
		NewDeliveryParams: delivery.NewDeliveryParams{
			ID:                   id,
			CustomerID:           customerID,
			RouteID:              routeID,
			Pickup:               pickup,
			Drop:                 drop,
			ScheduledPickup:      dto.ScheduledPickupTime,
			ScheduledDelivery:    dto.ScheduledDeliveryTime,
			Priority:             delivery.Priority(dto.Priority),
			PackageDetails:       dto.PackageDetails,
			RequestedVehicleType: dto.RequestedVehicleType,
		},
		DriverID:       driverID,
		VehicleID:      vehicleID,
		Status:         delivery.Status(dto.Status),
		ActualPickup:   dto.ActualPickupTime,
		ActualDelivery: dto.ActualDeliveryTime,
		Version:        dto.Version,
		CreatedAt:      dto.CreatedAt,
		UpdatedAt:      dto.UpdatedAt,
	})
}
