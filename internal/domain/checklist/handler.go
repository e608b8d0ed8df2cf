package checklist

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/climavet/climavet/internal/platform/apperr"
	"github.com/climavet/climavet/internal/platform/middleware"
	"github.com/climavet/climavet/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/checklists/generate", h.Generate)
	api.GET("/checklists", h.List)
	api.GET("/checklists/:id", h.Get)
	api.PATCH("/checklists/:id", h.Update)
	api.DELETE("/checklists/:id", h.Delete)
	api.POST("/checklists/:id/regenerate", h.Regenerate)
	api.GET("/checklists/:id/items", h.ListItems)
	api.POST("/checklists/:id/recalculate", h.Recalculate)
	api.GET("/checklists/:id/metrics", h.Metrics)
	api.POST("/checklists/:id/mark-completed", h.markChecklist(true))
	api.POST("/checklists/:id/mark-incomplete", h.markChecklist(false))
	api.POST("/checklists/:id/mark-reviewed", h.MarkReviewed)
	api.GET("/checklists/:id/review-status", h.ReviewStatus)
	api.GET("/checklists/:id/export", h.Export)

	api.GET("/checklist-items/:id", h.GetItem)
	api.PATCH("/checklist-items/:id", h.UpdateItem)
	api.PUT("/checklist-items/:id/status", h.SetItemStatus)
	api.POST("/checklist-items/:id/recompute-status", h.RecomputeItemStatus)
	api.POST("/checklist-items/:id/mark-completed", h.markItem(true))
	api.POST("/checklist-items/:id/mark-incomplete", h.markItem(false))
}

func parseUUID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperr.Validation("invalid %s %q", field, raw)
	}
	return id, nil
}

// -- Checklists --

func (h *Handler) Generate(c echo.Context) error {
	var req GenerateRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body: %v", err)
	}
	clinicID, err := parseUUID("clinic_id", req.ClinicID)
	if err != nil {
		return err
	}
	planID, err := parseUUID("disaster_plan_id", req.DisasterPlanID)
	if err != nil {
		return err
	}
	cl, err := h.svc.GenerateChecklist(c.Request().Context(), clinicID, planID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, cl)
}

func (h *Handler) Regenerate(c echo.Context) error {
	id, err := parseUUID("checklist id", c.Param("id"))
	if err != nil {
		return err
	}
	cl, err := h.svc.RegenerateChecklist(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, cl)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := parseUUID("checklist id", c.Param("id"))
	if err != nil {
		return err
	}
	cl, err := h.svc.GetChecklist(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cl)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	params := make(map[string]string)
	for _, k := range []string{"clinic_id", "disaster_plan_id"} {
		if v := c.QueryParam(k); v != "" {
			if _, err := parseUUID(k, v); err != nil {
				return err
			}
			params[k] = v
		}
	}
	for _, k := range []string{"disaster_category", "is_active"} {
		if v := c.QueryParam(k); v != "" {
			params[k] = v
		}
	}
	items, total, err := h.svc.ListChecklists(c.Request().Context(), params, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	if items == nil {
		items = []*Checklist{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Update(c echo.Context) error {
	id, err := parseUUID("checklist id", c.Param("id"))
	if err != nil {
		return err
	}
	var patch ChecklistPatch
	if err := c.Bind(&patch); err != nil {
		return apperr.Validation("invalid request body: %v", err)
	}
	cl, err := h.svc.UpdateChecklist(c.Request().Context(), id, patch)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cl)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := parseUUID("checklist id", c.Param("id"))
	if err != nil {
		return err
	}
	if err := h.svc.DeleteChecklist(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListItems(c echo.Context) error {
	id, err := parseUUID("checklist id", c.Param("id"))
	if err != nil {
		return err
	}
	params := make(map[string]string)
	for _, k := range []string{"status", "category", "priority", "essential"} {
		if v := c.QueryParam(k); v != "" {
			params[k] = v
		}
	}
	items, err := h.svc.ListItems(c.Request().Context(), id, params)
	if err != nil {
		return err
	}
	if items == nil {
		items = []*Item{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) Recalculate(c echo.Context) error {
	id, err := parseUUID("checklist id", c.Param("id"))
	if err != nil {
		return err
	}
	cl, err := h.svc.Recalculate(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cl)
}

func (h *Handler) Metrics(c echo.Context) error {
	id, err := parseUUID("checklist id", c.Param("id"))
	if err != nil {
		return err
	}
	m, err := h.svc.Metrics(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) markChecklist(completed bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := parseUUID("checklist id", c.Param("id"))
		if err != nil {
			return err
		}
		if err := h.svc.MarkChecklistCompleted(c.Request().Context(), id, completed); err != nil {
			return err
		}
		if completed {
			return middleware.Acknowledge(c, "checklist marked as completed")
		}
		return middleware.Acknowledge(c, "checklist marked as incomplete")
	}
}

func (h *Handler) MarkReviewed(c echo.Context) error {
	id, err := parseUUID("checklist id", c.Param("id"))
	if err != nil {
		return err
	}
	var req ReviewRequest
	if c.Request().ContentLength > 0 {
		if err := c.Bind(&req); err != nil {
			return apperr.Validation("invalid request body: %v", err)
		}
	}
	if _, err := h.svc.MarkReviewed(c.Request().Context(), id, req.Notes); err != nil {
		return err
	}
	return middleware.Acknowledge(c, "checklist marked as reviewed")
}

func (h *Handler) ReviewStatus(c echo.Context) error {
	id, err := parseUUID("checklist id", c.Param("id"))
	if err != nil {
		return err
	}
	rs, err := h.svc.ReviewStatus(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rs)
}

func (h *Handler) Export(c echo.Context) error {
	id, err := parseUUID("checklist id", c.Param("id"))
	if err != nil {
		return err
	}
	out, err := h.svc.ExportItems(c.Request().Context(), id, c.QueryParam("format"))
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", out.Filename))
	return c.Blob(http.StatusOK, out.ContentType, out.Body)
}

// -- Items --

func (h *Handler) GetItem(c echo.Context) error {
	id, err := parseUUID("item id", c.Param("id"))
	if err != nil {
		return err
	}
	it, err := h.svc.GetItem(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, it)
}

func (h *Handler) UpdateItem(c echo.Context) error {
	id, err := parseUUID("item id", c.Param("id"))
	if err != nil {
		return err
	}
	var patch InventoryPatch
	if err := c.Bind(&patch); err != nil {
		return apperr.Validation("invalid request body: %v", err)
	}
	it, err := h.svc.UpdateInventory(c.Request().Context(), id, patch)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, it)
}

func (h *Handler) SetItemStatus(c echo.Context) error {
	id, err := parseUUID("item id", c.Param("id"))
	if err != nil {
		return err
	}
	var req StatusRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body: %v", err)
	}
	it, err := h.svc.SetItemStatus(c.Request().Context(), id, req.Status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, it)
}

func (h *Handler) RecomputeItemStatus(c echo.Context) error {
	id, err := parseUUID("item id", c.Param("id"))
	if err != nil {
		return err
	}
	force := false
	if v := c.QueryParam("force"); v != "" {
		if force, err = strconv.ParseBool(v); err != nil {
			return apperr.Validation("invalid force %q", v)
		}
	}
	it, err := h.svc.RecomputeItemStatus(c.Request().Context(), id, force)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, it)
}

func (h *Handler) markItem(completed bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := parseUUID("item id", c.Param("id"))
		if err != nil {
			return err
		}
		if err := h.svc.MarkItemCompleted(c.Request().Context(), id, completed); err != nil {
			return err
		}
		if completed {
			return middleware.Acknowledge(c, "item marked as completed")
		}
		return middleware.Acknowledge(c, "item marked as incomplete")
	}
}
