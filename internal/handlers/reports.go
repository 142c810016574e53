package handlers

import (
	"errors"
	"net/http"

	"parkxcel/internal/services"

	"github.com/labstack/echo/v4"
)

type ReportHandler struct {
	reportService *services.ReportService
}

func NewReportHandler(reportService *services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

func (h *ReportHandler) Summary(c echo.Context) error {
	ctx := c.Request().Context()

	summary, err := h.reportService.DashboardSummary(ctx)
	if err != nil {
		if errors.Is(err, services.ErrServiceUnavailable) {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "service temporarily unavailable")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load summary")
	}

	return c.JSON(http.StatusOK, summary)
}

func (h *ReportHandler) AllBookings(c echo.Context) error {
	ctx := c.Request().Context()

	bookings, err := h.reportService.AllBookings(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load bookings")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"bookings": bookings,
	})
}

func (h *ReportHandler) Revenue(c echo.Context) error {
	ctx := c.Request().Context()

	revenue, err := h.reportService.RevenueByLot(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load revenue")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"revenue": revenue,
	})
}

func (h *ReportHandler) Users(c echo.Context) error {
	ctx := c.Request().Context()

	users, err := h.reportService.ListUsers(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load users")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"users": users,
	})
}
