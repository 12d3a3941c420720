package queries

import (
	"context"
	"errors"
	"strings"

	"fleet/internal/core/domain/model/delivery"
	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/pkg/errs"
	"fleet/internal/pkg/guard"

	"gorm.io/gorm"
)

var ErrListDeliveriesQueryIsNotConstructed = errors.New("ListDeliveriesQuery must be created via NewListDeliveriesQuery constructor")

// DeliveryFilter narrows ListDeliveries. Nil fields do not filter.
type DeliveryFilter struct {
	Status     *delivery.Status
	CustomerID *kernel.UUID
	DriverID   *kernel.UUID
	Priority   *delivery.Priority
	Limit      int
	Offset     int
}

// ListDeliveriesQuery pages through deliveries, newest first.
//
// Customers are pinned to their own deliveries and drivers to the ones assigned
// to them whatever the filter says, so the same query serves "my deliveries".
//
// Example:
//
//	status := delivery.Pending
//	query, err := NewListDeliveriesQuery(admin, DeliveryFilter{Status: &status, Limit: 20})
//	if err != nil {
//	    return err
//	}
//	page, err := handler.Handle(ctx, query)
type ListDeliveriesQuery struct {
	filter DeliveryFilter
	guard  guard.ConstructorGuard
}

func NewListDeliveriesQuery(actor kernel.Actor, filter DeliveryFilter) (ListDeliveriesQuery, error) {
	if err := actor.Validate(); err != nil {
		return ListDeliveriesQuery{}, err
	}

	var err error
	if filter.Status != nil {
		err = errors.Join(err, filter.Status.Validate())
	}
	if filter.Priority != nil {
		err = errors.Join(err, filter.Priority.Validate())
	}
	if filter.Offset < 0 {
		err = errors.Join(err, errs.NewValueIsOutOfRangeError("offset", filter.Offset, 0, "unbounded"))
	}
	if err != nil {
		return ListDeliveriesQuery{}, err
	}

	switch actor.Role {
	case kernel.RoleCustomer:
		id := actor.ID
		filter.CustomerID = &id
	case kernel.RoleDriver:
		id := actor.ID
		filter.DriverID = &id
	}
	filter.Limit = pageSize(filter.Limit)

	return ListDeliveriesQuery{filter: filter, guard: guard.NewConstructorGuard()}, nil
}

func (q ListDeliveriesQuery) Filter() DeliveryFilter { return q.filter }

func (q ListDeliveriesQuery) Validate() error {
	return q.guard.Validate(ErrListDeliveriesQueryIsNotConstructed)
}

type ListDeliveriesQueryHandler struct {
	db *gorm.DB
}

func NewListDeliveriesQueryHandler(db *gorm.DB) ListDeliveriesQueryHandler {
	return ListDeliveriesQueryHandler{db: db}
}

func (h ListDeliveriesQueryHandler) Handle(ctx context.Context, query ListDeliveriesQuery) ([]DeliveryView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	f := query.Filter()
	var (
		where []string
		args  []any
	)
	if f.Status != nil {
		where = append(where, "d.status = ?")
		args = append(args, int(*f.Status))
	}
	if f.CustomerID != nil {
		where = append(where, "d.customer_id = ?")
		args = append(args, f.CustomerID.Raw())
	}
	if f.DriverID != nil {
		where = append(where, "d.driver_id = ?")
		args = append(args, f.DriverID.Raw())
	}
	if f.Priority != nil {
		where = append(where, "d.priority = ?")
		args = append(args, int(*f.Priority))
	}

	var sb strings.Builder
	sb.WriteString("SELECT " + deliveryColumns + " FROM deliveries d")
	if len(where) > 0 {
		sb.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	sb.WriteString(" ORDER BY d.created_at DESC, d.id LIMIT ? OFFSET ?")
	args = append(args, f.Limit, f.Offset)

	rows, err := h.db.WithContext(ctx).Raw(sb.String(), args...).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	deliveries := make([]DeliveryView, 0)
	for rows.Next() {
		view, scanErr := scanDelivery(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		deliveries = append(deliveries, view)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return deliveries, nil
}
