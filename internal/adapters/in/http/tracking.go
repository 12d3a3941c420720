package http

import (
	"net/http"
	"time"

	"fleet/internal/core/application/usecases/commands"
	"fleet/internal/core/application/usecases/queries"
	"fleet/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// RecordPosition handles POST /api/v1/deliveries/{id}/tracking.
func (s *Server) RecordPosition(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	var req positionRequest
	if err = bindBody(c, &req); err != nil {
		return err
	}
	if req.Lat == nil || req.Lng == nil {
		return errs.NewValueIsRequiredError("current_lat and current_lng")
	}

	cmd, err := commands.NewRecordPositionCommand(actor, id, *req.Lat, *req.Lng, req.Speed, req.Heading)
	if err != nil {
		return err
	}
	payload, err := s.h.RecordPosition.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, payload)
}

// GetLatestPosition handles GET /api/v1/deliveries/{id}/tracking/latest.
func (s *Server) GetLatestPosition(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	query, err := queries.NewGetLatestPositionQuery(actor, id)
	if err != nil {
		return err
	}
	payload, found, err := s.h.GetLatestPosition.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	if !found {
		return errs.NewObjectNotFoundError("tracking sample", id)
	}
	return c.JSON(http.StatusOK, payload)
}

// GetTrackingHistory handles GET /api/v1/deliveries/{id}/tracking.
func (s *Server) GetTrackingHistory(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		return err
	}

	var n int
	if limit != nil {
		n = *limit
	}
	query, err := queries.NewGetTrackingHistoryQuery(actor, id, n)
	if err != nil {
		return err
	}
	samples, err := s.h.GetTrackingHistory.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, samples)
}

// GetRecentPositions handles GET /api/v1/tracking/recent.
func (s *Server) GetRecentPositions(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	minutes, err := queryInt(c, "minutes")
	if err != nil {
		return err
	}

	var window time.Duration
	if minutes != nil {
		if *minutes <= 0 {
			return errs.NewValueIsOutOfRangeError("minutes", *minutes, 1, queries.MaxRecentWindow.Minutes())
		}
		window = time.Duration(*minutes) * time.Minute
	}

	query, err := queries.NewGetRecentPositionsQuery(actor, window)
	if err != nil {
		return err
	}
	views, err := s.h.GetRecentPositions.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toRecentPositionResponses(views))
}

// GetActiveRoster handles GET /api/v1/tracking/roster.
func (s *Server) GetActiveRoster(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}

	query, err := queries.NewGetActiveRosterQuery(actor)
	if err != nil {
		return err
	}
	entries, err := s.h.GetActiveRoster.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toRosterResponses(entries))
}
