package queries

import (
	"context"
	"database/sql"
	"errors"

	"fleet/internal/core/domain/model/delivery"
	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/core/domain/model/vehicle"
	"fleet/internal/pkg/errs"
	"fleet/internal/pkg/guard"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrGetAvailableVehiclesQueryIsNotConstructed = errors.New(
	"GetAvailableVehiclesQuery must be created via NewGetAvailableVehiclesQuery constructor",
)

type VehicleView struct {
	ID          kernel.UUID
	Number      string
	Type        string
	Capacity    float64
	Status      vehicle.Status
	LocationLat *float64
	LocationLng *float64
}

// GetAvailableVehiclesQuery lists available vehicles. With a window it also
// drops vehicles held by an active delivery whose schedule overlaps the window
// under the same inclusive rule the conflict detector uses. Admin only.
type GetAvailableVehiclesQuery struct {
	window *kernel.TimeWindow
	guard  guard.ConstructorGuard
}

func NewGetAvailableVehiclesQuery(actor kernel.Actor, window *kernel.TimeWindow) (GetAvailableVehiclesQuery, error) {
	if err := actor.Validate(); err != nil {
		return GetAvailableVehiclesQuery{}, err
	}
	if !actor.IsAdmin() {
		return GetAvailableVehiclesQuery{}, errs.NewAccessDeniedError("available vehicles", "admin role required")
	}
	if window != nil {
		if err := window.Validate(); err != nil {
			return GetAvailableVehiclesQuery{}, err
		}
	}
	return GetAvailableVehiclesQuery{window: window, guard: guard.NewConstructorGuard()}, nil
}

func (q GetAvailableVehiclesQuery) Window() *kernel.TimeWindow { return q.window }

func (q GetAvailableVehiclesQuery) Validate() error {
	return q.guard.Validate(ErrGetAvailableVehiclesQueryIsNotConstructed)
}

type GetAvailableVehiclesQueryHandler struct {
	db *gorm.DB
}

func NewGetAvailableVehiclesQueryHandler(db *gorm.DB) GetAvailableVehiclesQueryHandler {
	return GetAvailableVehiclesQueryHandler{db: db}
}

func (h GetAvailableVehiclesQueryHandler) Handle(
	ctx context.Context,
	query GetAvailableVehiclesQuery,
) ([]VehicleView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	sqlText := `
		SELECT v.id, v.vehicle_number, v.vehicle_type, v.capacity, v.status,
			v.current_location_lat, v.current_location_lng
		FROM vehicles v
		WHERE v.status = ?`
	args := []any{int(vehicle.StatusAvailable)}

	if w := query.Window(); w != nil {
		sqlText += `
		AND NOT EXISTS (
			SELECT 1 FROM deliveries d
			WHERE d.vehicle_id = v.id
				AND d.status IN ?
				AND d.scheduled_pickup_time IS NOT NULL
				AND d.scheduled_delivery_time IS NOT NULL
				AND d.scheduled_pickup_time <= ?
				AND d.scheduled_delivery_time >= ?
		)`
		args = append(args, statusValues(delivery.ActiveStatuses()...), w.End(), w.Start())
	}
	sqlText += ` ORDER BY v.vehicle_number`

	rows, err := h.db.WithContext(ctx).Raw(sqlText, args...).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	vehicles := make([]VehicleView, 0)
	for rows.Next() {
		var (
			view     VehicleView
			id       uuid.UUID
			status   int
			lat, lng sql.NullFloat64
		)
		if err = rows.Scan(&id, &view.Number, &view.Type, &view.Capacity, &status, &lat, &lng); err != nil {
			return nil, err
		}

		if view.ID, err = kernel.UUIDFromRaw(id); err != nil {
			return nil, err
		}
		view.Status = vehicle.Status(status)
		view.LocationLat, view.LocationLng = nullFloat(lat), nullFloat(lng)
		vehicles = append(vehicles, view)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return vehicles, nil
}
