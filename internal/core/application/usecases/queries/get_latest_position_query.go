package queries

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/core/domain/model/tracking"
	"fleet/internal/core/ports"
	"fleet/internal/pkg/guard"
	"fleet/internal/pkg/logger"

	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const latestLoadTimeout = 5 * time.Second

var ErrGetLatestPositionQueryIsNotConstructed = errors.New(
	"GetLatestPositionQuery must be created via NewGetLatestPositionQuery constructor",
)

type GetLatestPositionQuery struct {
	actor      kernel.Actor
	deliveryID kernel.UUID
	guard      guard.ConstructorGuard
}

func NewGetLatestPositionQuery(actor kernel.Actor, deliveryID kernel.UUID) (GetLatestPositionQuery, error) {
	if err := errors.Join(actor.Validate(), deliveryID.Validate()); err != nil {
		return GetLatestPositionQuery{}, err
	}
	return GetLatestPositionQuery{
		actor:      actor,
		deliveryID: deliveryID,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func (q GetLatestPositionQuery) Actor() kernel.Actor     { return q.actor }
func (q GetLatestPositionQuery) DeliveryID() kernel.UUID { return q.deliveryID }

func (q GetLatestPositionQuery) Validate() error {
	return q.guard.Validate(ErrGetLatestPositionQueryIsNotConstructed)
}

// GetLatestPositionQueryHandler answers from the latest-position cache when it
// can and falls back to the tracking table. Concurrent misses for the same
// delivery share one database read.
type GetLatestPositionQueryHandler struct {
	db    *gorm.DB
	cache ports.LatestPositionCache
	group *singleflight.Group
	log   logger.Logger
}

// NewGetLatestPositionQueryHandler creates the handler. cache may be nil.
func NewGetLatestPositionQueryHandler(
	db *gorm.DB,
	cache ports.LatestPositionCache,
	log logger.Logger,
) GetLatestPositionQueryHandler {
	return GetLatestPositionQueryHandler{
		db:    db,
		cache: cache,
		group: &singleflight.Group{},
		log:   log.With(logger.String("component", "latest_position")),
	}
}

type latestResult struct {
	payload tracking.Payload
	found   bool
}

// Handle returns the newest sample of the delivery. found is false when the
// delivery has not reported a position yet.
func (h GetLatestPositionQueryHandler) Handle(
	ctx context.Context,
	query GetLatestPositionQuery,
) (payload tracking.Payload, found bool, err error) {
	if err = query.Validate(); err != nil {
		return tracking.Payload{}, false, err
	}

	if _, err = loadVisibleDelivery(ctx, h.db, query.Actor(), query.DeliveryID()); err != nil {
		return tracking.Payload{}, false, err
	}

	if h.cache != nil {
		cached, ok, cacheErr := h.cache.Get(ctx, query.DeliveryID())
		if cacheErr != nil {
			h.log.Warn("latest position cache read failed",
				logger.String("delivery_id", query.DeliveryID().String()),
				logger.Error(cacheErr),
			)
		} else if ok {
			return cached, true, nil
		}
	}

	result, err := h.shared(ctx, query.DeliveryID())
	if err != nil {
		return tracking.Payload{}, false, err
	}
	return result.payload, result.found, nil
}

// shared runs one database read per delivery for all concurrent callers. The
// read ignores the cancellation of whichever caller started it and is bounded
// by latestLoadTimeout instead.
func (h GetLatestPositionQueryHandler) shared(ctx context.Context, deliveryID kernel.UUID) (latestResult, error) {
	v, err, _ := h.group.Do(deliveryID.String(), func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), latestLoadTimeout)
		defer cancel()
		return h.load(loadCtx, deliveryID)
	})
	if err != nil {
		return latestResult{}, err
	}
	return v.(latestResult), nil
}

func (h GetLatestPositionQueryHandler) load(ctx context.Context, deliveryID kernel.UUID) (latestResult, error) {
	row := h.db.WithContext(ctx).Raw(`
		SELECT `+sampleColumns+`
		FROM tracking t
		WHERE t.delivery_id = ?
		ORDER BY t.recorded_at DESC
		LIMIT 1
	`, deliveryID.Raw()).Row()

	payload, err := scanPayload(row)
	if errors.Is(err, sql.ErrNoRows) {
		return latestResult{}, nil
	}
	if err != nil {
		return latestResult{}, err
	}

	if h.cache != nil {
		if putErr := h.cache.Put(ctx, payload); putErr != nil {
			h.log.Warn("latest position not cached",
				logger.String("delivery_id", deliveryID.String()),
				logger.Error(putErr),
			)
		}
	}
	return latestResult{payload: payload, found: true}, nil
}
