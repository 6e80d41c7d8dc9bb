package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tracewell/venuetrace/internal/config"
	"github.com/tracewell/venuetrace/internal/middleware"
	"github.com/tracewell/venuetrace/internal/repository"
)

// MarkerHandler serves the hotspot map markers.  Listing requires a
// session; placement additionally requires the manager or admin role,
// enforced by route middleware.
type MarkerHandler struct {
	Cfg     config.Config
	Markers *repository.MarkerRepo
}

func NewMarkerHandler(cfg config.Config, markers *repository.MarkerRepo) *MarkerHandler {
	return &MarkerHandler{Cfg: cfg, Markers: markers}
}

// List handles GET /mapmarkers.
func (h *MarkerHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	markers, err := h.Markers.ListAll(ctx)
	if err != nil {
		return storeError(c, h.Cfg, err, "list markers failed")
	}

	out := make([]echo.Map, 0, len(markers))
	for _, m := range markers {
		out = append(out, echo.Map{
			"longitude": m.Longitude,
			"latitude":  m.Latitude,
		})
	}
	return c.JSON(http.StatusOK, out)
}

// Add handles POST /addmarkers.  The marker schema guarantees long/lat are
// present and in range.
func (h *MarkerHandler) Add(c echo.Context) error {
	long, ok := middleware.FormNumber(c, "long")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "long must be a number"})
	}
	lat, ok := middleware.FormNumber(c, "lat")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "lat must be a number"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, err := h.Markers.Insert(ctx, long, lat)
	if err != nil {
		return storeError(c, h.Cfg, err, "create marker failed")
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"id":        id,
		"longitude": long,
		"latitude":  lat,
	})
}
