package visit

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clinicdesk/clinicdesk/internal/platform/auth"
	"github.com/clinicdesk/clinicdesk/internal/platform/bridge"
)

// Handler provides the REST endpoint for recording visits.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes registers visit routes on the API group.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/visits", auth.RequireRole("operator", "admin"))
	g.POST("", h.Record)
}

// Record handles POST /api/v1/visits.
func (h *Handler) Record(c echo.Context) error {
	var v Visit
	if err := c.Bind(&v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := h.svc.Record(c.Request().Context(), &v); err != nil {
		switch {
		case errors.Is(err, bridge.ErrNotConfigured):
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, bridge.ErrUnavailable):
			return echo.NewHTTPError(http.StatusBadGateway, err.Error())
		default:
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	return c.JSON(http.StatusCreated, v)
}
