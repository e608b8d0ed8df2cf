package plan

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/climavet/climavet/internal/platform/apperr"
	"github.com/climavet/climavet/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/disaster-plans/generate", h.GeneratePlan)
	api.GET("/disaster-plans", h.ListPlans)
	api.GET("/disaster-plans/:id", h.GetPlan)
	api.DELETE("/disaster-plans/:id", h.DeletePlan)
	api.GET("/clinics/:id/disaster-plans", h.ListClinicPlans)
}

func parseUUID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperr.Validation("invalid %s %q", field, raw)
	}
	return id, nil
}

func (h *Handler) GeneratePlan(c echo.Context) error {
	var req GenerateRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body: %v", err)
	}
	clinicID, err := parseUUID("clinic_id", req.ClinicID)
	if err != nil {
		return err
	}
	p, err := h.svc.GeneratePlan(c.Request().Context(), clinicID, req.DisasterCategory)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) GetPlan(c echo.Context) error {
	id, err := parseUUID("plan id", c.Param("id"))
	if err != nil {
		return err
	}
	p, err := h.svc.GetPlan(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) ListPlans(c echo.Context) error {
	pg := pagination.FromContext(c)
	params := make(map[string]string)
	if v := c.QueryParam("clinic_id"); v != "" {
		if _, err := parseUUID("clinic_id", v); err != nil {
			return err
		}
		params["clinic_id"] = v
	}
	if v := c.QueryParam("disaster_category"); v != "" {
		params["disaster_category"] = v
	}
	items, total, err := h.svc.ListPlans(c.Request().Context(), params, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	if items == nil {
		items = []*DisasterPlan{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) DeletePlan(c echo.Context) error {
	id, err := parseUUID("plan id", c.Param("id"))
	if err != nil {
		return err
	}
	if err := h.svc.DeletePlan(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListClinicPlans(c echo.Context) error {
	clinicID, err := parseUUID("clinic id", c.Param("id"))
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListClinicPlans(c.Request().Context(), clinicID, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	if items == nil {
		items = []*DisasterPlan{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
