package queries

import (
	"context"
	"errors"

	"fleet/internal/core/domain/model/delivery"
	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/pkg/errs"
	"fleet/internal/pkg/guard"

	"gorm.io/gorm"
)

var ErrGetDeliveryStatsQueryIsNotConstructed = errors.New(
	"GetDeliveryStatsQuery must be created via NewGetDeliveryStatsQuery constructor",
)

// DeliveryStats is the statistics read model. AvgDeliveryTimeMinutes averages
// actual_delivery_time - actual_pickup_time over deliveries where both are set
// and is 0 when there are none.
type DeliveryStats struct {
	TotalDeliveries        int64   `json:"total_deliveries"`
	Completed              int64   `json:"completed"`
	Cancelled              int64   `json:"cancelled"`
	Active                 int64   `json:"active"`
	AvgDeliveryTimeMinutes float64 `json:"avg_delivery_time_minutes"`
}

// GetDeliveryStatsQuery aggregates over all deliveries or over one driver's.
// Admins may ask for any driver; a driver always gets their own numbers.
type GetDeliveryStatsQuery struct {
	driverID *kernel.UUID
	guard    guard.ConstructorGuard
}

func NewGetDeliveryStatsQuery(actor kernel.Actor, driverID *kernel.UUID) (GetDeliveryStatsQuery, error) {
	if err := actor.Validate(); err != nil {
		return GetDeliveryStatsQuery{}, err
	}

	switch actor.Role {
	case kernel.RoleAdmin:
		if driverID != nil {
			if err := driverID.Validate(); err != nil {
				return GetDeliveryStatsQuery{}, err
			}
		}
	case kernel.RoleDriver:
		own := actor.ID
		driverID = &own
	default:
		return GetDeliveryStatsQuery{}, errs.NewAccessDeniedError("delivery statistics", "admin or driver role required")
	}

	return GetDeliveryStatsQuery{driverID: driverID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetDeliveryStatsQuery) DriverID() *kernel.UUID { return q.driverID }

func (q GetDeliveryStatsQuery) Validate() error {
	return q.guard.Validate(ErrGetDeliveryStatsQueryIsNotConstructed)
}

type GetDeliveryStatsQueryHandler struct {
	db *gorm.DB
}

func NewGetDeliveryStatsQueryHandler(db *gorm.DB) GetDeliveryStatsQueryHandler {
	return GetDeliveryStatsQueryHandler{db: db}
}

func (h GetDeliveryStatsQueryHandler) Handle(ctx context.Context, query GetDeliveryStatsQuery) (DeliveryStats, error) {
	if err := query.Validate(); err != nil {
		return DeliveryStats{}, err
	}

	sqlText := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = ?),
			COUNT(*) FILTER (WHERE status = ?),
			COUNT(*) FILTER (WHERE status IN ?),
			COALESCE(AVG(EXTRACT(EPOCH FROM (actual_delivery_time - actual_pickup_time)) / 60.0)
				FILTER (WHERE actual_pickup_time IS NOT NULL AND actual_delivery_time IS NOT NULL), 0)::float8
		FROM deliveries`
	args := []any{
		int(delivery.Delivered),
		int(delivery.Cancelled),
		statusValues(delivery.ActiveStatuses()...),
	}
	if driverID := query.DriverID(); driverID != nil {
		sqlText += ` WHERE driver_id = ?`
		args = append(args, driverID.Raw())
	}

	var stats DeliveryStats
	err := h.db.WithContext(ctx).Raw(sqlText, args...).Row().Scan(
		&stats.TotalDeliveries,
		&stats.Completed,
		&stats.Cancelled,
		&stats.Active,
		&stats.AvgDeliveryTimeMinutes,
	)
	if err != nil {
		return DeliveryStats{}, err
	}
	return stats, nil
}
