package plan

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/climavet/climavet/internal/platform/apperr"
)

func TestHandler_GeneratePlan(t *testing.T) {
	svc, _, cl := newTestService(t)
	h := NewHandler(svc)
	e := echo.New()

	body := `{"clinic_id":"` + cl.ID.String() + `","disaster_category":"HEATWAVE"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.GeneratePlan(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
	var p DisasterPlan
	json.Unmarshal(rec.Body.Bytes(), &p)
	if p.Name != "HEATWAVE Preparedness Plan" {
		t.Errorf("unexpected name %q", p.Name)
	}
}

func TestHandler_GeneratePlan_Errors(t *testing.T) {
	svc, _, cl := newTestService(t)
	h := NewHandler(svc)
	e := echo.New()

	tests := []struct {
		name string
		body string
		want int
	}{
		{"bad clinic id", `{"clinic_id":"abc","disaster_category":"FLOOD"}`, http.StatusBadRequest},
		{"unknown category", `{"clinic_id":"` + cl.ID.String() + `","disaster_category":"VOLCANO"}`, http.StatusNotFound},
		{"unknown clinic", `{"clinic_id":"` + uuid.New().String() + `","disaster_category":"FLOOD"}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			c := e.NewContext(req, httptest.NewRecorder())

			err := h.GeneratePlan(c)
			if got := apperr.HTTPStatus(err); got != tt.want {
				t.Errorf("expected %d, got %d (%v)", tt.want, got, err)
			}
		})
	}
}

func TestHandler_GetAndDeletePlan(t *testing.T) {
	svc, _, cl := newTestService(t)
	h := NewHandler(svc)
	e := echo.New()
	p, _ := svc.GeneratePlan(context.Background(), cl.ID, "FLOOD")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(p.ID.String())
	if err := h.GetPlan(c); err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodDelete, "/", nil)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(p.ID.String())
	if err := h.DeletePlan(c); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
}

func TestHandler_ListClinicPlans(t *testing.T) {
	svc, _, cl := newTestService(t)
	h := NewHandler(svc)
	e := echo.New()
	svc.GeneratePlan(context.Background(), cl.ID, "FLOOD")
	svc.GeneratePlan(context.Background(), cl.ID, "TORNADO")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(cl.ID.String())
	if err := h.ListClinicPlans(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var body struct {
		Total int `json:"total"`
	}
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body.Total != 2 {
		t.Errorf("expected 2 plans, got %d", body.Total)
	}
}

func TestHandler_ListPlans_BadClinicFilter(t *testing.T) {
	svc, _, _ := newTestService(t)
	h := NewHandler(svc)
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/?clinic_id=nope", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	if err := h.ListPlans(c); !apperr.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}
