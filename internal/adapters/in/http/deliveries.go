package http

import (
	"net/http"

	"fleet/internal/core/application/usecases/commands"
	"fleet/internal/core/application/usecases/queries"
	"fleet/internal/core/domain/model/delivery"
	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// CreateDelivery handles POST /api/v1/deliveries.
func (s *Server) CreateDelivery(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}

	var req newDeliveryRequest
	if err = bindBody(c, &req); err != nil {
		return err
	}

	params, err := req.toParams()
	if err != nil {
		return err
	}

	cmd, err := commands.NewCreateDeliveryCommand(actor, params)
	if err != nil {
		return err
	}
	if err = s.h.CreateDelivery.Handle(c.Request().Context(), cmd); err != nil {
		return err
	}

	return s.respondDelivery(c, http.StatusCreated, actor, params.DeliveryID)
}

func (r newDeliveryRequest) toParams() (commands.CreateDeliveryParams, error) {
	if r.Pickup == nil {
		return commands.CreateDeliveryParams{}, errs.NewValueIsRequiredError("pickup")
	}
	if r.Drop == nil {
		return commands.CreateDeliveryParams{}, errs.NewValueIsRequiredError("drop")
	}

	pickup, err := r.Pickup.toPlace()
	if err != nil {
		return commands.CreateDeliveryParams{}, err
	}
	drop, err := r.Drop.toPlace()
	if err != nil {
		return commands.CreateDeliveryParams{}, err
	}
	priority, err := delivery.ParsePriority(r.Priority)
	if err != nil {
		return commands.CreateDeliveryParams{}, err
	}

	params := commands.CreateDeliveryParams{
		DeliveryID:           kernel.NewUUID(),
		RouteID:              r.RouteID,
		Pickup:               *pickup,
		Drop:                 *drop,
		ScheduledPickup:      r.ScheduledPickupTime,
		ScheduledDelivery:    r.ScheduledDeliveryTime,
		Priority:             priority,
		PackageDetails:       r.PackageDetails,
		RequestedVehicleType: r.RequestedVehicleType,
		DriverID:             r.DriverID,
		VehicleID:            r.VehicleID,
	}
	if r.CustomerID != nil {
		params.CustomerID = *r.CustomerID
	}
	return params, nil
}

// ListDeliveries handles GET /api/v1/deliveries.
func (s *Server) ListDeliveries(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}

	filter, err := deliveryFilter(c)
	if err != nil {
		return err
	}

	query, err := queries.NewListDeliveriesQuery(actor, filter)
	if err != nil {
		return err
	}
	views, err := s.h.ListDeliveries.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toDeliveryResponses(views))
}

func deliveryFilter(c echo.Context) (queries.DeliveryFilter, error) {
	var filter queries.DeliveryFilter

	status, err := queryString(c, "status")
	if err != nil {
		return filter, err
	}
	if status != nil {
		st, err := delivery.ParseStatus(*status)
		if err != nil {
			return filter, err
		}
		filter.Status = &st
	}

	priority, err := queryString(c, "priority")
	if err != nil {
		return filter, err
	}
	if priority != nil {
		p, err := delivery.ParsePriority(*priority)
		if err != nil {
			return filter, err
		}
		filter.Priority = &p
	}

	if filter.CustomerID, err = queryUUID(c, "customer_id"); err != nil {
		return filter, err
	}
	if filter.DriverID, err = queryUUID(c, "driver_id"); err != nil {
		return filter, err
	}

	limit, err := queryInt(c, "limit")
	if err != nil {
		return filter, err
	}
	if limit != nil {
		filter.Limit = *limit
	}
	offset, err := queryInt(c, "offset")
	if err != nil {
		return filter, err
	}
	if offset != nil {
		filter.Offset = *offset
	}
	return filter, nil
}

// GetActiveDeliveries handles GET /api/v1/deliveries/active.
func (s *Server) GetActiveDeliveries(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}

	query, err := queries.NewGetActiveDeliveriesQuery(actor)
	if err != nil {
		return err
	}
	views, err := s.h.GetActiveDeliveries.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toActiveDeliveryResponses(views))
}

// GetDeliveryStats handles GET /api/v1/deliveries/stats.
func (s *Server) GetDeliveryStats(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}

	driverID, err := queryUUID(c, "driver_id")
	if err != nil {
		return err
	}

	query, err := queries.NewGetDeliveryStatsQuery(actor, driverID)
	if err != nil {
		return err
	}
	stats, err := s.h.GetDeliveryStats.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

// GetDelivery handles GET /api/v1/deliveries/{id}.
func (s *Server) GetDelivery(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	return s.respondDelivery(c, http.StatusOK, actor, id)
}

// UpdateDeliveryDetails handles PATCH /api/v1/deliveries/{id}.
func (s *Server) UpdateDeliveryDetails(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	var req deliveryPatchRequest
	if err = bindBody(c, &req); err != nil {
		return err
	}
	patch, err := req.toPatch()
	if err != nil {
		return err
	}

	cmd, err := commands.NewUpdateDeliveryDetailsCommand(actor, id, patch)
	if err != nil {
		return err
	}
	if err = s.h.UpdateDeliveryDetails.Handle(c.Request().Context(), cmd); err != nil {
		return err
	}
	return s.respondDelivery(c, http.StatusOK, actor, id)
}

func (r deliveryPatchRequest) toPatch() (delivery.Patch, error) {
	pickup, err := r.Pickup.toPlace()
	if err != nil {
		return delivery.Patch{}, err
	}
	drop, err := r.Drop.toPlace()
	if err != nil {
		return delivery.Patch{}, err
	}

	patch := delivery.Patch{
		Pickup:               pickup,
		Drop:                 drop,
		ScheduledPickup:      r.ScheduledPickupTime,
		ScheduledDelivery:    r.ScheduledDeliveryTime,
		PackageDetails:       r.PackageDetails,
		RequestedVehicleType: r.RequestedVehicleType,
		RouteID:              r.RouteID,
	}
	if r.Priority != nil {
		p, err := delivery.ParsePriority(*r.Priority)
		if err != nil {
			return delivery.Patch{}, err
		}
		patch.Priority = &p
	}
	return patch, nil
}

// DeleteDelivery handles DELETE /api/v1/deliveries/{id}.
func (s *Server) DeleteDelivery(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	cmd, err := commands.NewDeleteDeliveryCommand(actor, id)
	if err != nil {
		return err
	}
	if err = s.h.DeleteDelivery.Handle(c.Request().Context(), cmd); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// AssignDriver handles POST /api/v1/deliveries/{id}/assign.
func (s *Server) AssignDriver(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	var req assignmentRequest
	if err = bindBody(c, &req); err != nil {
		return err
	}

	cmd, err := commands.NewAssignDriverCommand(actor, id, req.DriverID, req.VehicleID)
	if err != nil {
		return err
	}
	if err = s.h.AssignDriver.Handle(c.Request().Context(), cmd); err != nil {
		return err
	}
	return s.respondDelivery(c, http.StatusOK, actor, id)
}

// UpdateDeliveryStatus handles PUT /api/v1/deliveries/{id}/status.
func (s *Server) UpdateDeliveryStatus(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	var req statusRequest
	if err = bindBody(c, &req); err != nil {
		return err
	}
	status, err := delivery.ParseStatus(req.Status)
	if err != nil {
		return err
	}

	cmd, err := commands.NewUpdateDeliveryStatusCommand(actor, id, status)
	if err != nil {
		return err
	}
	if err = s.h.UpdateDeliveryStatus.Handle(c.Request().Context(), cmd); err != nil {
		return err
	}
	return s.respondDelivery(c, http.StatusOK, actor, id)
}

// CancelDelivery handles POST /api/v1/deliveries/{id}/cancel.
func (s *Server) CancelDelivery(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	var req reasonRequest
	if err = bindBody(c, &req); err != nil {
		return err
	}

	cmd, err := commands.NewCancelDeliveryCommand(actor, id, req.Reason)
	if err != nil {
		return err
	}
	if err = s.h.CancelDelivery.Handle(c.Request().Context(), cmd); err != nil {
		return err
	}
	return s.respondDelivery(c, http.StatusOK, actor, id)
}

// RejectDelivery handles POST /api/v1/deliveries/{id}/reject.
func (s *Server) RejectDelivery(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	var req reasonRequest
	if err = bindBody(c, &req); err != nil {
		return err
	}

	cmd, err := commands.NewRejectDeliveryCommand(actor, id, req.Reason)
	if err != nil {
		return err
	}
	if err = s.h.RejectDelivery.Handle(c.Request().Context(), cmd); err != nil {
		return err
	}
	return s.respondDelivery(c, http.StatusOK, actor, id)
}

// respondDelivery re-reads the delivery through the read model.
func (s *Server) respondDelivery(c echo.Context, status int, actor kernel.Actor, id kernel.UUID) error {
	query, err := queries.NewGetDeliveryQuery(actor, id)
	if err != nil {
		return err
	}
	view, err := s.h.GetDelivery.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(status, toDeliveryResponse(view))
}
