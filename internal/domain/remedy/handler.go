package remedy

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clinicdesk/clinicdesk/internal/platform/auth"
	"github.com/clinicdesk/clinicdesk/internal/platform/sheets"
	"github.com/clinicdesk/clinicdesk/pkg/pagination"
)

// Handler provides REST endpoints for the remedy catalog.
type Handler struct {
	svc *Service
}

// NewHandler creates a new remedy handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes registers catalog routes on the API group.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/remedies", auth.RequireRole("operator", "admin"))
	g.POST("/sync", h.Sync)
	g.GET("", h.Search)
	g.GET("/catalog", h.Catalog)
}

type syncRequest struct {
	URL string `json:"url"`
}

// Sync handles POST /api/v1/remedies/sync.
func (h *Handler) Sync(c echo.Context) error {
	var req syncRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	result, err := h.svc.Sync(c.Request().Context(), req.URL)
	if err != nil {
		switch {
		case errors.Is(err, sheets.ErrNoURL):
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, sheets.ErrFetch):
			return echo.NewHTTPError(http.StatusBadGateway, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.JSON(http.StatusOK, result)
}

// Search handles GET /api/v1/remedies?query=...
func (h *Handler) Search(c echo.Context) error {
	query := c.QueryParam("query")
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query parameter 'query' is required")
	}

	results, err := h.svc.Search(c.Request().Context(), query)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if results == nil {
		results = []Suggestion{}
	}
	return c.JSON(http.StatusOK, results)
}

// Catalog handles GET /api/v1/remedies/catalog with pagination.
func (h *Handler) Catalog(c echo.Context) error {
	params := pagination.FromContext(c)

	remedies, total, err := h.svc.List(c.Request().Context(), params.Limit, params.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(remedies, total, params.Limit, params.Offset))
}
