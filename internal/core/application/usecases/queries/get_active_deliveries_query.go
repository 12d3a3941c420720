package queries

import (
	"context"
	"database/sql"
	"errors"

	"fleet/internal/core/domain/model/delivery"
	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/pkg/guard"

	"gorm.io/gorm"
)

var ErrGetActiveDeliveriesQueryIsNotConstructed = errors.New(
	"GetActiveDeliveriesQuery must be created via NewGetActiveDeliveriesQuery constructor",
)

// ActiveDeliveryView is a delivery in assigned, on_route or picked_up together
// with its vehicle's number and coarse last-known position.
type ActiveDeliveryView struct {
	DeliveryView
	VehicleNumber      *string
	VehicleType        *string
	VehicleLocationLat *float64
	VehicleLocationLng *float64
}

// GetActiveDeliveriesQuery lists active deliveries ordered by scheduled pickup,
// unscheduled ones last. Non-admin actors only see their own.
type GetActiveDeliveriesQuery struct {
	actor kernel.Actor
	guard guard.ConstructorGuard
}

func NewGetActiveDeliveriesQuery(actor kernel.Actor) (GetActiveDeliveriesQuery, error) {
	if err := actor.Validate(); err != nil {
		return GetActiveDeliveriesQuery{}, err
	}
	return GetActiveDeliveriesQuery{actor: actor, guard: guard.NewConstructorGuard()}, nil
}

func (q GetActiveDeliveriesQuery) Actor() kernel.Actor { return q.actor }

func (q GetActiveDeliveriesQuery) Validate() error {
	return q.guard.Validate(ErrGetActiveDeliveriesQueryIsNotConstructed)
}

type GetActiveDeliveriesQueryHandler struct {
	db *gorm.DB
}

func NewGetActiveDeliveriesQueryHandler(db *gorm.DB) GetActiveDeliveriesQueryHandler {
	return GetActiveDeliveriesQueryHandler{db: db}
}

func (h GetActiveDeliveriesQueryHandler) Handle(
	ctx context.Context,
	query GetActiveDeliveriesQuery,
) ([]ActiveDeliveryView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	sqlText := `
		SELECT ` + deliveryColumns + `,
			v.vehicle_number,
			v.vehicle_type,
			v.current_location_lat,
			v.current_location_lng
		FROM deliveries d
		LEFT JOIN vehicles v ON v.id = d.vehicle_id
		WHERE d.status IN ?`
	args := []any{statusValues(delivery.ActiveStatuses()...)}

	switch actor := query.Actor(); actor.Role {
	case kernel.RoleCustomer:
		sqlText += ` AND d.customer_id = ?`
		args = append(args, actor.ID.Raw())
	case kernel.RoleDriver:
		sqlText += ` AND d.driver_id = ?`
		args = append(args, actor.ID.Raw())
	}
	sqlText += ` ORDER BY d.scheduled_pickup_time ASC NULLS LAST, d.created_at`

	rows, err := h.db.WithContext(ctx).Raw(sqlText, args...).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	active := make([]ActiveDeliveryView, 0)
	for rows.Next() {
		var (
			number, kind sql.NullString
			lat, lng     sql.NullFloat64
		)
		view, scanErr := scanDelivery(rows, &number, &kind, &lat, &lng)
		if scanErr != nil {
			return nil, scanErr
		}

		item := ActiveDeliveryView{
			DeliveryView:       view,
			VehicleLocationLat: nullFloat(lat),
			VehicleLocationLng: nullFloat(lng),
		}
		if number.Valid {
			item.VehicleNumber = &number.String
		}
		if kind.Valid {
			item.VehicleType = &kind.String
		}
		active = append(active, item)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return active, nil
}
