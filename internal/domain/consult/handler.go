package consult

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clinicdesk/clinicdesk/internal/domain/patient"
	"github.com/clinicdesk/clinicdesk/internal/domain/remedy"
	"github.com/clinicdesk/clinicdesk/internal/platform/auth"
	"github.com/clinicdesk/clinicdesk/internal/platform/bridge"
)

// Handler exposes the consultation workspace flow over REST.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes registers workspace routes on the API group.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/consults", auth.RequireRole("operator", "admin"))
	g.POST("", h.Start)
	g.GET("/:id", h.Get)
	g.DELETE("/:id", h.Discard)
	g.POST("/:id/lookup", h.Lookup)
	g.POST("/:id/patient", h.RegisterPatient)
	g.PUT("/:id/draft", h.UpdateDraft)
	g.GET("/:id/suggestions", h.Suggestions)
	g.POST("/:id/apply", h.Apply)
	g.POST("/:id/repeat", h.Repeat)
	g.POST("/:id/complete", h.Complete)
}

// toHTTPError translates workspace and bridge failures into transport errors.
func toHTTPError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, bridge.ErrNotConfigured):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, bridge.ErrUnavailable):
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	default:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
}

// Start handles POST /api/v1/consults.
func (h *Handler) Start(c echo.Context) error {
	ws, err := h.svc.Start(c.Request().Context())
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, ws)
}

// Get handles GET /api/v1/consults/:id.
func (h *Handler) Get(c echo.Context) error {
	ws, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, ws)
}

// Discard handles DELETE /api/v1/consults/:id.
func (h *Handler) Discard(c echo.Context) error {
	if err := h.svc.Discard(c.Request().Context(), c.Param("id")); err != nil {
		return toHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

type lookupRequest struct {
	Phone string `json:"phone"`
}

type lookupResponse struct {
	Found     bool       `json:"found"`
	Workspace *Workspace `json:"workspace"`
}

// Lookup handles POST /api/v1/consults/:id/lookup.
func (h *Handler) Lookup(c echo.Context) error {
	var req lookupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	ws, found, err := h.svc.Lookup(c.Request().Context(), c.Param("id"), req.Phone)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, lookupResponse{Found: found, Workspace: ws})
}

// RegisterPatient handles POST /api/v1/consults/:id/patient.
func (h *Handler) RegisterPatient(c echo.Context) error {
	var p patient.Patient
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	ws, err := h.svc.RegisterPatient(c.Request().Context(), c.Param("id"), &p)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, ws)
}

// UpdateDraft handles PUT /api/v1/consults/:id/draft.
func (h *Handler) UpdateDraft(c echo.Context) error {
	var d Draft
	if err := c.Bind(&d); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	ws, err := h.svc.UpdateDraft(c.Request().Context(), c.Param("id"), d)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, ws)
}

// Suggestions handles GET /api/v1/consults/:id/suggestions.
func (h *Handler) Suggestions(c echo.Context) error {
	results, err := h.svc.Suggest(c.Request().Context(), c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	if results == nil {
		results = []remedy.Suggestion{}
	}
	return c.JSON(http.StatusOK, results)
}

// Apply handles POST /api/v1/consults/:id/apply.
func (h *Handler) Apply(c echo.Context) error {
	var req ApplyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	ws, err := h.svc.Apply(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, ws)
}

type repeatRequest struct {
	VisitID string `json:"visitId"`
}

// Repeat handles POST /api/v1/consults/:id/repeat.
func (h *Handler) Repeat(c echo.Context) error {
	var req repeatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	ws, err := h.svc.Repeat(c.Request().Context(), c.Param("id"), req.VisitID)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, ws)
}

// Complete handles POST /api/v1/consults/:id/complete.
func (h *Handler) Complete(c echo.Context) error {
	ws, err := h.svc.Complete(c.Request().Context(), c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, ws)
}
