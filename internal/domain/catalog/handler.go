package catalog

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/climavet/climavet/internal/platform/apperr"
)

type Handler struct {
	catalog *Catalog
}

func NewHandler(c *Catalog) *Handler {
	return &Handler{catalog: c}
}

// RegisterRoutes mounts the read-only catalog endpoints. mw is applied to the
// whole group, typically the response cache.
func (h *Handler) RegisterRoutes(api *echo.Group, mw ...echo.MiddlewareFunc) {
	g := api.Group("", mw...)
	g.GET("/protocols", h.ListProtocols)
	g.GET("/protocols/:category", h.GetProtocol)
	g.GET("/resource-catalog/baseline", h.GetBaseline)
	g.GET("/resource-catalog/:category", h.GetResources)
}

type resourceList struct {
	Category Category               `json:"category,omitempty"`
	Name     string                 `json:"name"`
	Items    []ResourceTemplateItem `json:"items"`
}

func (h *Handler) ListProtocols(c echo.Context) error {
	var out []CategorySummary
	for _, s := range h.catalog.Summaries() {
		if s.HasProtocol {
			out = append(out, s)
		}
	}
	if out == nil {
		out = []CategorySummary{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"data":  out,
		"total": len(out),
	})
}

func (h *Handler) GetProtocol(c echo.Context) error {
	cat, err := ParseCategory(c.Param("category"))
	if err != nil {
		return err
	}
	p, err := h.catalog.LookupProtocol(cat)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) GetBaseline(c echo.Context) error {
	return c.JSON(http.StatusOK, resourceList{
		Name:  "Baseline",
		Items: h.catalog.Baseline(),
	})
}

// GetResources answers an empty item list for a known category without a
// catalog entry; an unknown category is not found.
func (h *Handler) GetResources(c echo.Context) error {
	cat, err := ParseCategory(c.Param("category"))
	if err != nil {
		return err
	}
	if !cat.Known() {
		return apperr.NotFound("unknown disaster category %q", cat)
	}
	items, _ := h.catalog.Resources(cat)
	return c.JSON(http.StatusOK, resourceList{
		Category: cat,
		Name:     cat.DisplayName(),
		Items:    items,
	})
}
