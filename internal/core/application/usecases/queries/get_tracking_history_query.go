package queries

import (
	"context"
	"errors"

	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/core/domain/model/tracking"
	"fleet/internal/pkg/guard"

	"gorm.io/gorm"
)

var ErrGetTrackingHistoryQueryIsNotConstructed = errors.New(
	"GetTrackingHistoryQuery must be created via NewGetTrackingHistoryQuery constructor",
)

// GetTrackingHistoryQuery returns up to limit samples of one delivery, newest
// first. A non-positive limit means DefaultPageSize; limits above MaxPageSize are capped.
type GetTrackingHistoryQuery struct {
	actor      kernel.Actor
	deliveryID kernel.UUID
	limit      int
	guard      guard.ConstructorGuard
}

func NewGetTrackingHistoryQuery(actor kernel.Actor, deliveryID kernel.UUID, limit int) (GetTrackingHistoryQuery, error) {
	if err := errors.Join(actor.Validate(), deliveryID.Validate()); err != nil {
		return GetTrackingHistoryQuery{}, err
	}
	return GetTrackingHistoryQuery{
		actor:      actor,
		deliveryID: deliveryID,
		limit:      pageSize(limit),
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func (q GetTrackingHistoryQuery) Actor() kernel.Actor     { return q.actor }
func (q GetTrackingHistoryQuery) DeliveryID() kernel.UUID { return q.deliveryID }
func (q GetTrackingHistoryQuery) Limit() int              { return q.limit }

func (q GetTrackingHistoryQuery) Validate() error {
	return q.guard.Validate(ErrGetTrackingHistoryQueryIsNotConstructed)
}

type GetTrackingHistoryQueryHandler struct {
	db *gorm.DB
}

func NewGetTrackingHistoryQueryHandler(db *gorm.DB) GetTrackingHistoryQueryHandler {
	return GetTrackingHistoryQueryHandler{db: db}
}

func (h GetTrackingHistoryQueryHandler) Handle(
	ctx context.Context,
	query GetTrackingHistoryQuery,
) ([]tracking.Payload, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	if _, err := loadVisibleDelivery(ctx, h.db, query.Actor(), query.DeliveryID()); err != nil {
		return nil, err
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT `+sampleColumns+`
		FROM tracking t
		WHERE t.delivery_id = ?
		ORDER BY t.recorded_at DESC
		LIMIT ?
	`, query.DeliveryID().Raw(), query.Limit()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	history := make([]tracking.Payload, 0)
	for rows.Next() {
		payload, scanErr := scanPayload(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		history = append(history, payload)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return history, nil
}
