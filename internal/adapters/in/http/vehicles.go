package http

import (
	"net/http"

	"fleet/internal/core/application/usecases/commands"
	"fleet/internal/core/application/usecases/queries"
	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/core/domain/model/vehicle"

	"github.com/labstack/echo/v4"
)

// RegisterVehicle handles POST /api/v1/vehicles.
func (s *Server) RegisterVehicle(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}

	var req newVehicleRequest
	if err = bindBody(c, &req); err != nil {
		return err
	}

	cmd, err := commands.NewRegisterVehicleCommand(actor, kernel.NewUUID(), req.Number, req.Type, req.Capacity)
	if err != nil {
		return err
	}
	if err = s.h.RegisterVehicle.Handle(c.Request().Context(), cmd); err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, vehicleResponse{
		ID:       cmd.VehicleID(),
		Number:   cmd.Number(),
		Type:     cmd.Kind(),
		Capacity: cmd.Capacity(),
		Status:   vehicle.StatusAvailable.String(),
	})
}

// GetAvailableVehicles handles GET /api/v1/vehicles/available.
func (s *Server) GetAvailableVehicles(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}

	start, err := queryTime(c, "start")
	if err != nil {
		return err
	}
	end, err := queryTime(c, "end")
	if err != nil {
		return err
	}
	window, err := kernel.NewOptionalTimeWindow(start, end)
	if err != nil {
		return err
	}

	query, err := queries.NewGetAvailableVehiclesQuery(actor, window)
	if err != nil {
		return err
	}
	views, err := s.h.GetAvailableVehicles.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toVehicleResponses(views))
}

// SetVehicleStatus handles PUT /api/v1/vehicles/{id}/status.
func (s *Server) SetVehicleStatus(c echo.Context) error {
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
	status, err := vehicle.ParseStatus(req.Status)
	if err != nil {
		return err
	}

	cmd, err := commands.NewSetVehicleStatusCommand(actor, id, status)
	if err != nil {
		return err
	}
	if err = s.h.SetVehicleStatus.Handle(c.Request().Context(), cmd); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
