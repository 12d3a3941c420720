package queries

import (
	"context"
	"errors"

	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/pkg/guard"

	"gorm.io/gorm"
)

var ErrGetDeliveryQueryIsNotConstructed = errors.New("GetDeliveryQuery must be created via NewGetDeliveryQuery constructor")

// GetDeliveryQuery fetches one delivery as seen by actor. A delivery the actor
// may not see is reported as not found.
type GetDeliveryQuery struct {
	actor      kernel.Actor
	deliveryID kernel.UUID
	guard      guard.ConstructorGuard
}

func NewGetDeliveryQuery(actor kernel.Actor, deliveryID kernel.UUID) (GetDeliveryQuery, error) {
	if err := errors.Join(actor.Validate(), deliveryID.Validate()); err != nil {
		return GetDeliveryQuery{}, err
	}
	return GetDeliveryQuery{
		actor:      actor,
		deliveryID: deliveryID,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func (q GetDeliveryQuery) Actor() kernel.Actor     { return q.actor }
func (q GetDeliveryQuery) DeliveryID() kernel.UUID { return q.deliveryID }

func (q GetDeliveryQuery) Validate() error {
	return q.guard.Validate(ErrGetDeliveryQueryIsNotConstructed)
}

type GetDeliveryQueryHandler struct {
	db *gorm.DB
}

func NewGetDeliveryQueryHandler(db *gorm.DB) GetDeliveryQueryHandler {
	return GetDeliveryQueryHandler{db: db}
}

func (h GetDeliveryQueryHandler) Handle(ctx context.Context, query GetDeliveryQuery) (DeliveryView, error) {
	if err := query.Validate(); err != nil {
		return DeliveryView{}, err
	}
	return loadVisibleDelivery(ctx, h.db, query.Actor(), query.DeliveryID())
}
