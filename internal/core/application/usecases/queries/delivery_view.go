// Package queries contains read operations for retrieving system state.
// Handlers run raw SQL against the read side and return flat read models;
// they never load aggregates.
package queries

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"fleet/internal/core/domain/model/delivery"
	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 100
)

// DeliveryView is the read model of one delivery.
type DeliveryView struct {
	ID                    kernel.UUID
	CustomerID            kernel.UUID
	DriverID              *kernel.UUID
	VehicleID             *kernel.UUID
	RouteID               *kernel.UUID
	PickupLocation        string
	PickupLat             float64
	PickupLng             float64
	DropLocation          string
	DropLat               float64
	DropLng               float64
	ScheduledPickupTime   *time.Time
	ScheduledDeliveryTime *time.Time
	ActualPickupTime      *time.Time
	ActualDeliveryTime    *time.Time
	Priority              delivery.Priority
	PackageDetails        string
	RequestedVehicleType  string
	Status                delivery.Status
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

const deliveryColumns = `
	d.id, d.customer_id, d.driver_id, d.vehicle_id, d.route_id,
	d.pickup_location, d.pickup_lat, d.pickup_lng,
	d.drop_location, d.drop_lat, d.drop_lng,
	d.scheduled_pickup_time, d.scheduled_delivery_time,
	d.actual_pickup_time, d.actual_delivery_time,
	d.priority, d.package_details, d.requested_vehicle_type,
	d.status, d.created_at, d.updated_at`

type scanner interface {
	Scan(dest ...any) error
}

// scanDelivery reads deliveryColumns followed by any extra destinations.
func scanDelivery(row scanner, extra ...any) (DeliveryView, error) {
	var (
		view                            DeliveryView
		id, customerID                  uuid.UUID
		driverID, vehicleID, routeID    *uuid.UUID
		priority, status                int
		pickupAt, deliverAt             sql.NullTime
		actualPickupAt, actualDeliverAt sql.NullTime
	)

	dest := []any{
		&id, &customerID, &driverID, &vehicleID, &routeID,
		&view.PickupLocation, &view.PickupLat, &view.PickupLng,
		&view.DropLocation, &view.DropLat, &view.DropLng,
		&pickupAt, &deliverAt,
		&actualPickupAt, &actualDeliverAt,
		&priority, &view.PackageDetails, &view.RequestedVehicleType,
		&status, &view.CreatedAt, &view.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return DeliveryView{}, err
	}

	var err error
	if view.ID, err = kernel.UUIDFromRaw(id); err != nil {
		return DeliveryView{}, err
	}
	if view.CustomerID, err = kernel.UUIDFromRaw(customerID); err != nil {
		return DeliveryView{}, err
	}
	driver, driverErr := kernel.UUIDPtrFromRaw(driverID)
	vehicleRef, vehicleErr := kernel.UUIDPtrFromRaw(vehicleID)
	route, routeErr := kernel.UUIDPtrFromRaw(routeID)
	if err = errors.Join(driverErr, vehicleErr, routeErr); err != nil {
		return DeliveryView{}, err
	}

	view.DriverID, view.VehicleID, view.RouteID = driver, vehicleRef, route
	view.ScheduledPickupTime = nullTime(pickupAt)
	view.ScheduledDeliveryTime = nullTime(deliverAt)
	view.ActualPickupTime = nullTime(actualPickupAt)
	view.ActualDeliveryTime = nullTime(actualDeliverAt)
	view.Priority = delivery.Priority(priority)
	view.Status = delivery.Status(status)
	view.CreatedAt = view.CreatedAt.UTC()
	view.UpdatedAt = view.UpdatedAt.UTC()
	return view, nil
}

// VisibleTo mirrors the aggregate rule: admins see everything, customers their
// own deliveries and drivers the ones assigned to them.
func (v DeliveryView) VisibleTo(actor kernel.Actor) bool {
	switch actor.Role {
	case kernel.RoleAdmin:
		return true
	case kernel.RoleCustomer:
		return v.CustomerID.IsEqual(actor.ID)
	case kernel.RoleDriver:
		return v.DriverID != nil && v.DriverID.IsEqual(actor.ID)
	default:
		return false
	}
}

// loadVisibleDelivery reads one delivery and hides it from actors that may not see it.
func loadVisibleDelivery(ctx context.Context, db *gorm.DB, actor kernel.Actor, id kernel.UUID) (DeliveryView, error) {
	row := db.WithContext(ctx).Raw(`SELECT `+deliveryColumns+` FROM deliveries d WHERE d.id = ?`, id.Raw()).Row()
	view, err := scanDelivery(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return DeliveryView{}, errs.NewObjectNotFoundError("delivery", id.String())
		}
		return DeliveryView{}, err
	}

	if !view.VisibleTo(actor) {
		return DeliveryView{}, errs.NewObjectNotFoundError("delivery", id.String())
	}
	return view, nil
}

func nullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	utc := t.Time.UTC()
	return &utc
}

func nullFloat(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Float64
	return &v
}

func statusValues(statuses ...delivery.Status) []int {
	out := make([]int, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, int(s))
	}
	return out
}

func pageSize(limit int) int {
	switch {
	case limit <= 0:
		return DefaultPageSize
	case limit > MaxPageSize:
		return MaxPageSize
	default:
		return limit
	}
}
