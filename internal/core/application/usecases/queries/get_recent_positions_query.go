package queries

import (
	"context"
	"errors"
	"time"

	"fleet/internal/core/domain/model/delivery"
	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/core/domain/model/tracking"
	"fleet/internal/core/ports"
	"fleet/internal/pkg/errs"
	"fleet/internal/pkg/guard"

	"gorm.io/gorm"
)

const (
	DefaultRecentWindow = 5 * time.Minute
	MaxRecentWindow     = 24 * time.Hour
)

var ErrGetRecentPositionsQueryIsNotConstructed = errors.New(
	"GetRecentPositionsQuery must be created via NewGetRecentPositionsQuery constructor",
)

// RecentPositionView is a sample with the summary of the delivery it belongs to.
type RecentPositionView struct {
	tracking.Payload
	PickupLocation string
	DropLocation   string
	DeliveryStatus delivery.Status
}

// GetRecentPositionsQuery is the operations-wide live view: every sample of the
// trailing window across all deliveries, newest first. Admin only.
type GetRecentPositionsQuery struct {
	window time.Duration
	guard  guard.ConstructorGuard
}

func NewGetRecentPositionsQuery(actor kernel.Actor, window time.Duration) (GetRecentPositionsQuery, error) {
	if err := actor.Validate(); err != nil {
		return GetRecentPositionsQuery{}, err
	}
	if !actor.IsAdmin() {
		return GetRecentPositionsQuery{}, errs.NewAccessDeniedError("recent positions", "admin role required")
	}

	if window == 0 {
		window = DefaultRecentWindow
	}
	if window < 0 || window > MaxRecentWindow {
		return GetRecentPositionsQuery{}, errs.NewValueIsOutOfRangeError("minutes", window.Minutes(), 1, MaxRecentWindow.Minutes())
	}

	return GetRecentPositionsQuery{window: window, guard: guard.NewConstructorGuard()}, nil
}

func (q GetRecentPositionsQuery) Window() time.Duration { return q.window }

func (q GetRecentPositionsQuery) Validate() error {
	return q.guard.Validate(ErrGetRecentPositionsQueryIsNotConstructed)
}

type GetRecentPositionsQueryHandler struct {
	db    *gorm.DB
	clock ports.Clock
}

func NewGetRecentPositionsQueryHandler(db *gorm.DB, clock ports.Clock) GetRecentPositionsQueryHandler {
	return GetRecentPositionsQueryHandler{db: db, clock: clock}
}

func (h GetRecentPositionsQueryHandler) Handle(
	ctx context.Context,
	query GetRecentPositionsQuery,
) ([]RecentPositionView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	since := h.clock.Now().UTC().Add(-query.Window())
	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT `+sampleColumns+`,
			d.pickup_location,
			d.drop_location,
			d.status
		FROM tracking t
		JOIN deliveries d ON d.id = t.delivery_id
		WHERE t.recorded_at >= ?
		ORDER BY t.recorded_at DESC
	`, since).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	recent := make([]RecentPositionView, 0)
	for rows.Next() {
		var (
			view   RecentPositionView
			status int
		)
		payload, scanErr := scanPayload(rows, &view.PickupLocation, &view.DropLocation, &status)
		if scanErr != nil {
			return nil, scanErr
		}
		view.Payload = payload
		view.DeliveryStatus = delivery.Status(status)
		recent = append(recent, view)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return recent, nil
}
