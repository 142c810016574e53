package handlers

import (
	"errors"
	"net/http"

	"parkxcel/internal/export"
	"parkxcel/internal/middleware"
	"parkxcel/internal/services"

	"github.com/labstack/echo/v4"
)

type ParkingHandler struct {
	catalogService    *services.CatalogService
	allocationService *services.AllocationService
	reportService     *services.ReportService
}

func NewParkingHandler(
	catalogService *services.CatalogService,
	allocationService *services.AllocationService,
	reportService *services.ReportService,
) *ParkingHandler {
	return &ParkingHandler{
		catalogService:    catalogService,
		allocationService: allocationService,
		reportService:     reportService,
	}
}

// ViewLots lists lots with availability counts but without per-spot detail.
func (h *ParkingHandler) ViewLots(c echo.Context) error {
	ctx := c.Request().Context()

	lots, err := h.catalogService.ListLots(ctx)
	if err != nil {
		if errors.Is(err, services.ErrServiceUnavailable) {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "service temporarily unavailable")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list parking lots")
	}

	responses := make([]interface{}, len(lots))
	for i := range lots {
		responses[i] = lots[i].ToResponse(false)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"lots": responses,
	})
}

type reserveRequest struct {
	LotID uint `json:"lot_id"`
}

func (h *ParkingHandler) Reserve(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := middleware.GetUserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var req reserveRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	reservation, err := h.allocationService.Reserve(ctx, userID, req.LotID)
	if err != nil {
		var ve *services.ValidationError
		if errors.As(err, &ve) {
			return echo.NewHTTPError(http.StatusBadRequest, ve.Error())
		}
		if errors.Is(err, services.ErrLotNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "parking lot not found")
		}
		if errors.Is(err, services.ErrNoAvailableSpots) {
			return echo.NewHTTPError(http.StatusConflict, "no available spots in this lot")
		}
		if errors.Is(err, services.ErrServiceUnavailable) {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "service temporarily unavailable")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to reserve spot")
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"reservation_id": reservation.ID,
		"lot_id":         req.LotID,
		"spot_id":        reservation.SpotID,
		"parking_time":   reservation.ParkingTime,
	})
}

type releaseRequest struct {
	SpotID uint `json:"spot_id"`
}

func (h *ParkingHandler) Release(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := middleware.GetUserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var req releaseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	reservation, err := h.allocationService.Release(ctx, userID, req.SpotID)
	if err != nil {
		var ve *services.ValidationError
		if errors.As(err, &ve) {
			return echo.NewHTTPError(http.StatusBadRequest, ve.Error())
		}
		if errors.Is(err, services.ErrNoActiveReservation) {
			return echo.NewHTTPError(http.StatusNotFound, "no active reservation for this spot")
		}
		if errors.Is(err, services.ErrServiceUnavailable) {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "service temporarily unavailable")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to release spot")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"reservation_id": reservation.ID,
		"spot_id":        reservation.SpotID,
		"exit_time":      reservation.ExitTime,
		"parking_cost":   reservation.ParkingCost,
	})
}

func (h *ParkingHandler) History(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := middleware.GetUserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	history, err := h.reportService.UserHistory(ctx, userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load parking history")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"history": history,
	})
}

func (h *ParkingHandler) Summary(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := middleware.GetUserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	summary, err := h.reportService.UserSummary(ctx, userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load parking summary")
	}

	return c.JSON(http.StatusOK, summary)
}

func (h *ParkingHandler) ExportCSV(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := middleware.GetUserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	history, err := h.reportService.UserHistory(ctx, userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load parking history")
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/csv")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="parking_history.csv"`)
	c.Response().WriteHeader(http.StatusOK)

	return export.WriteHistoryCSV(c.Response(), history)
}
