package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"parkxcel/internal/services"

	"github.com/labstack/echo/v4"
)

type LotHandler struct {
	catalogService *services.CatalogService
}

func NewLotHandler(catalogService *services.CatalogService) *LotHandler {
	return &LotHandler{catalogService: catalogService}
}

func (h *LotHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()

	var input services.CreateLotInput
	if err := c.Bind(&input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	lot, err := h.catalogService.CreateLot(ctx, input)
	if err != nil {
		var ve *services.ValidationError
		if errors.As(err, &ve) {
			return echo.NewHTTPError(http.StatusBadRequest, ve.Error())
		}
		if errors.Is(err, services.ErrServiceUnavailable) {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "service temporarily unavailable")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create parking lot")
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"lot_id":        lot.ID,
		"spots_created": lot.NumberOfSpots,
	})
}

func (h *LotHandler) List(c echo.Context) error {
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
		responses[i] = lots[i].ToResponse(true)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"lots": responses,
	})
}

func (h *LotHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()

	lotID, err := parseID(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid lot id")
	}

	var input services.UpdateLotInput
	if err := c.Bind(&input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	lot, err := h.catalogService.EditLot(ctx, lotID, input)
	if err != nil {
		var ve *services.ValidationError
		if errors.As(err, &ve) {
			return echo.NewHTTPError(http.StatusBadRequest, ve.Error())
		}
		if errors.Is(err, services.ErrLotNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "parking lot not found")
		}
		if errors.Is(err, services.ErrCapacityConflict) {
			return echo.NewHTTPError(http.StatusConflict, "cannot reduce spots below occupied count")
		}
		if errors.Is(err, services.ErrServiceUnavailable) {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "service temporarily unavailable")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update parking lot")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"lot": lot.ToResponse(false),
	})
}

func (h *LotHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	lotID, err := parseID(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid lot id")
	}

	if err := h.catalogService.DeleteLot(ctx, lotID); err != nil {
		if errors.Is(err, services.ErrLotNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "parking lot not found")
		}
		if errors.Is(err, services.ErrLotOccupied) {
			return echo.NewHTTPError(http.StatusConflict, "lot has occupied spots")
		}
		if errors.Is(err, services.ErrServiceUnavailable) {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "service temporarily unavailable")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete parking lot")
	}

	return c.NoContent(http.StatusNoContent)
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(id), nil
}
