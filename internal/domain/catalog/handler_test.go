package catalog

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/climavet/climavet/internal/platform/apperr"
)

func newTestHandler(t *testing.T) (*Handler, *echo.Echo) {
	t.Helper()
	return NewHandler(mustLoad(t)), echo.New()
}

func TestHandler_ListProtocols(t *testing.T) {
	h, e := newTestHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.ListProtocols(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Data  []CategorySummary `json:"data"`
		Total int               `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Total != len(AllCategories) || len(body.Data) != len(AllCategories) {
		t.Errorf("expected %d categories, got %d", len(AllCategories), body.Total)
	}
}

func TestHandler_GetProtocol(t *testing.T) {
	h, e := newTestHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("category")
	c.SetParamValues("power-outage")

	if err := h.GetProtocol(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var p ProtocolTemplate
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if p.Category != PowerOutage {
		t.Errorf("expected POWER_OUTAGE, got %s", p.Category)
	}
}

func TestHandler_GetProtocol_Errors(t *testing.T) {
	h, e := newTestHandler(t)
	tests := []struct {
		param string
		want  int
	}{
		{"volcano", http.StatusNotFound},
		{"12", http.StatusBadRequest},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("category")
		c.SetParamValues(tt.param)

		err := h.GetProtocol(c)
		if got := apperr.HTTPStatus(err); got != tt.want {
			t.Errorf("%s: expected %d, got %d (%v)", tt.param, tt.want, got, err)
		}
	}
}

func TestHandler_GetResources(t *testing.T) {
	h, e := newTestHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("category")
	c.SetParamValues("FLOOD")

	if err := h.GetResources(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var body resourceList
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.Items) != 2 || body.Items[0].Name != "Sandbags" {
		t.Errorf("unexpected flood items: %+v", body.Items)
	}
}

func TestHandler_GetResources_Unknown(t *testing.T) {
	h, e := newTestHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("category")
	c.SetParamValues("VOLCANO")

	if err := h.GetResources(c); !apperr.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestHandler_GetBaseline(t *testing.T) {
	h, e := newTestHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.GetBaseline(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var body resourceList
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.Items) != 7 {
		t.Errorf("expected 7 baseline items, got %d", len(body.Items))
	}
}
