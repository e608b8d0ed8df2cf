package checklist

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/climavet/climavet/internal/platform/apperr"
	"github.com/climavet/climavet/internal/platform/middleware"
)

func newRequest(method, target, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	return req
}

func TestHandler_Generate(t *testing.T) {
	f := newFixture(t)
	h := NewHandler(f.svc)
	e := echo.New()

	body := `{"clinic_id":"` + f.clinic.ID.String() + `","disaster_plan_id":"` + f.plan.ID.String() + `"}`
	rec := httptest.NewRecorder()
	c := e.NewContext(newRequest(http.MethodPost, "/", body), rec)

	if err := h.Generate(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
	var got Checklist
	json.Unmarshal(rec.Body.Bytes(), &got)
	if len(got.Items) != 8 {
		t.Errorf("expected 8 items, got %d", len(got.Items))
	}
}

func TestHandler_Generate_Errors(t *testing.T) {
	f := newFixture(t)
	h := NewHandler(f.svc)
	e := echo.New()

	tests := []struct {
		name string
		body string
		want int
	}{
		{"bad clinic id", `{"clinic_id":"x","disaster_plan_id":"` + f.plan.ID.String() + `"}`, http.StatusBadRequest},
		{"bad plan id", `{"clinic_id":"` + f.clinic.ID.String() + `","disaster_plan_id":""}`, http.StatusBadRequest},
		{"unknown plan", `{"clinic_id":"` + f.clinic.ID.String() + `","disaster_plan_id":"` + uuid.New().String() + `"}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := e.NewContext(newRequest(http.MethodPost, "/", tt.body), httptest.NewRecorder())
			err := h.Generate(c)
			if got := apperr.HTTPStatus(err); got != tt.want {
				t.Errorf("expected %d, got %d (%v)", tt.want, got, err)
			}
		})
	}

	f.generate(t)
	body := `{"clinic_id":"` + f.clinic.ID.String() + `","disaster_plan_id":"` + f.plan.ID.String() + `"}`
	c := e.NewContext(newRequest(http.MethodPost, "/", body), httptest.NewRecorder())
	if got := apperr.HTTPStatus(h.Generate(c)); got != http.StatusConflict {
		t.Errorf("expected 409, got %d", got)
	}
}

func TestHandler_Get(t *testing.T) {
	f := newFixture(t)
	cl := f.generate(t)
	h := NewHandler(f.svc)
	e := echo.New()

	rec := httptest.NewRecorder()
	c := e.NewContext(newRequest(http.MethodGet, "/", ""), rec)
	c.SetParamNames("id")
	c.SetParamValues(cl.ID.String())
	if err := h.Get(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	c = e.NewContext(newRequest(http.MethodGet, "/", ""), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")
	if got := apperr.HTTPStatus(h.Get(c)); got != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", got)
	}
}

func TestHandler_List(t *testing.T) {
	f := newFixture(t)
	f.generate(t)
	h := NewHandler(f.svc)
	e := echo.New()

	rec := httptest.NewRecorder()
	c := e.NewContext(newRequest(http.MethodGet, "/?is_active=true&disaster_category=wildfire", ""), rec)
	if err := h.List(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var resp struct {
		Data  []Checklist `json:"data"`
		Total int         `json:"total"`
	}
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Total != 1 || len(resp.Data) != 1 {
		t.Errorf("expected 1 checklist, got %d/%d", resp.Total, len(resp.Data))
	}

	c = e.NewContext(newRequest(http.MethodGet, "/?clinic_id=abc", ""), httptest.NewRecorder())
	if got := apperr.HTTPStatus(h.List(c)); got != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", got)
	}
}

func TestHandler_Update(t *testing.T) {
	f := newFixture(t)
	cl := f.generate(t)
	h := NewHandler(f.svc)
	e := echo.New()

	rec := httptest.NewRecorder()
	c := e.NewContext(newRequest(http.MethodPatch, "/", `{"review_frequency":"WEEKLY","review_notes":"check pumps"}`), rec)
	c.SetParamNames("id")
	c.SetParamValues(cl.ID.String())
	if err := h.Update(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got Checklist
	json.Unmarshal(rec.Body.Bytes(), &got)
	if got.ReviewFrequency != ReviewWeekly || got.ReviewNotes == nil || *got.ReviewNotes != "check pumps" {
		t.Errorf("patch not applied: %+v", got)
	}

	c = e.NewContext(newRequest(http.MethodPatch, "/", `{"review_frequency":"DAILY"}`), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues(cl.ID.String())
	if got := apperr.HTTPStatus(h.Update(c)); got != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", got)
	}
}

func TestHandler_Delete(t *testing.T) {
	f := newFixture(t)
	cl := f.generate(t)
	h := NewHandler(f.svc)
	e := echo.New()

	rec := httptest.NewRecorder()
	c := e.NewContext(newRequest(http.MethodDelete, "/", ""), rec)
	c.SetParamNames("id")
	c.SetParamValues(cl.ID.String())
	if err := h.Delete(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
}

func TestHandler_Regenerate(t *testing.T) {
	f := newFixture(t)
	cl := f.generate(t)
	h := NewHandler(f.svc)
	e := echo.New()

	rec := httptest.NewRecorder()
	c := e.NewContext(newRequest(http.MethodPost, "/", ""), rec)
	c.SetParamNames("id")
	c.SetParamValues(cl.ID.String())
	if err := h.Regenerate(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got Checklist
	json.Unmarshal(rec.Body.Bytes(), &got)
	if got.ID == cl.ID || got.ID == uuid.Nil {
		t.Errorf("expected a new checklist, got %s", got.ID)
	}
}

func TestHandler_ListItems(t *testing.T) {
	f := newFixture(t)
	cl := f.generate(t)
	h := NewHandler(f.svc)
	e := echo.New()

	rec := httptest.NewRecorder()
	c := e.NewContext(newRequest(http.MethodGet, "/?essential=true", ""), rec)
	c.SetParamNames("id")
	c.SetParamValues(cl.ID.String())
	if err := h.ListItems(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var items []Item
	json.Unmarshal(rec.Body.Bytes(), &items)
	if len(items) == 0 {
		t.Fatal("expected essential items")
	}
	for _, it := range items {
		if !it.IsEssential {
			t.Errorf("item %q is not essential", it.Name)
		}
	}
}

func TestHandler_ItemStatus(t *testing.T) {
	f := newFixture(t)
	cl := f.generate(t)
	it := f.itemNamed(t, cl, "First Aid Kit")
	h := NewHandler(f.svc)
	e := echo.New()

	c := e.NewContext(newRequest(http.MethodPut, "/", `{"status":"IN_STOCK"}`), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues(it.ID.String())
	if got := apperr.HTTPStatus(h.SetItemStatus(c)); got != http.StatusBadRequest {
		t.Errorf("expected 400 for derived status, got %d", got)
	}

	rec := httptest.NewRecorder()
	c = e.NewContext(newRequest(http.MethodPut, "/", `{"status":"NOT_NEEDED"}`), rec)
	c.SetParamNames("id")
	c.SetParamValues(it.ID.String())
	if err := h.SetItemStatus(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got Item
	json.Unmarshal(rec.Body.Bytes(), &got)
	if got.Status != StatusNotNeeded || !got.StatusLocked {
		t.Errorf("expected locked NOT_NEEDED, got %s locked=%v", got.Status, got.StatusLocked)
	}

	rec = httptest.NewRecorder()
	c = e.NewContext(newRequest(http.MethodPost, "/?force=true", ""), rec)
	c.SetParamNames("id")
	c.SetParamValues(it.ID.String())
	if err := h.RecomputeItemStatus(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	json.Unmarshal(rec.Body.Bytes(), &got)
	if got.Status != StatusOutOfStock || got.StatusLocked {
		t.Errorf("expected unlocked OUT_OF_STOCK, got %s locked=%v", got.Status, got.StatusLocked)
	}

	c = e.NewContext(newRequest(http.MethodPost, "/?force=perhaps", ""), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues(it.ID.String())
	if got := apperr.HTTPStatus(h.RecomputeItemStatus(c)); got != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", got)
	}
}

func TestHandler_UpdateItem(t *testing.T) {
	f := newFixture(t)
	cl := f.generate(t)
	it := f.itemNamed(t, cl, "Water Storage Containers")
	h := NewHandler(f.svc)
	e := echo.New()

	rec := httptest.NewRecorder()
	c := e.NewContext(newRequest(http.MethodPatch, "/", `{"current_units":1,"estimated_cost":12.5,"expiry_date":"2025-03-01T00:00:00Z"}`), rec)
	c.SetParamNames("id")
	c.SetParamValues(it.ID.String())
	if err := h.UpdateItem(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got Item
	json.Unmarshal(rec.Body.Bytes(), &got)
	if got.CurrentUnits != 1 || got.EstimatedCost == nil || *got.EstimatedCost != 12.5 || got.ExpiryDate == nil {
		t.Errorf("patch not applied: %+v", got)
	}

	c = e.NewContext(newRequest(http.MethodPatch, "/", `{"current_units":-3}`), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues(it.ID.String())
	if got := apperr.HTTPStatus(h.UpdateItem(c)); got != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", got)
	}
}

func TestHandler_Acknowledgements(t *testing.T) {
	f := newFixture(t)
	cl := f.generate(t)
	it := f.itemNamed(t, cl, "First Aid Kit")
	h := NewHandler(f.svc)
	e := echo.New()

	tests := []struct {
		name    string
		handler echo.HandlerFunc
		id      uuid.UUID
		body    string
		message string
	}{
		{"checklist completed", h.markChecklist(true), cl.ID, "", "checklist marked as completed"},
		{"checklist incomplete", h.markChecklist(false), cl.ID, "", "checklist marked as incomplete"},
		{"reviewed", h.MarkReviewed, cl.ID, `{"notes":"all good"}`, "checklist marked as reviewed"},
		{"reviewed without body", h.MarkReviewed, cl.ID, "", "checklist marked as reviewed"},
		{"item completed", h.markItem(true), it.ID, "", "item marked as completed"},
		{"item incomplete", h.markItem(false), it.ID, "", "item marked as incomplete"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c := e.NewContext(newRequest(http.MethodPost, "/", tt.body), rec)
			c.SetParamNames("id")
			c.SetParamValues(tt.id.String())
			if err := tt.handler(c); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			var ack middleware.Ack
			json.Unmarshal(rec.Body.Bytes(), &ack)
			if !ack.Success || ack.Message != tt.message {
				t.Errorf("unexpected ack %+v", ack)
			}
		})
	}

	if notes := f.store.checklists[cl.ID].ReviewNotes; notes == nil || *notes != "all good" {
		t.Error("review notes not stored")
	}
}

func TestHandler_MetricsAndReviewStatus(t *testing.T) {
	f := newFixture(t)
	cl := f.generate(t)
	h := NewHandler(f.svc)
	e := echo.New()

	rec := httptest.NewRecorder()
	c := e.NewContext(newRequest(http.MethodGet, "/", ""), rec)
	c.SetParamNames("id")
	c.SetParamValues(cl.ID.String())
	if err := h.Metrics(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var m Metrics
	json.Unmarshal(rec.Body.Bytes(), &m)
	if m.TotalItems != 8 || m.CompletionPercentage != 0 {
		t.Errorf("unexpected metrics %+v", m)
	}

	rec = httptest.NewRecorder()
	c = e.NewContext(newRequest(http.MethodGet, "/", ""), rec)
	c.SetParamNames("id")
	c.SetParamValues(cl.ID.String())
	if err := h.ReviewStatus(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var rs ReviewStatus
	json.Unmarshal(rec.Body.Bytes(), &rs)
	if rs.ReviewDue || rs.ReviewFrequency != ReviewNone {
		t.Errorf("unexpected review status %+v", rs)
	}

	rec = httptest.NewRecorder()
	c = e.NewContext(newRequest(http.MethodPost, "/", ""), rec)
	c.SetParamNames("id")
	c.SetParamValues(cl.ID.String())
	if err := h.Recalculate(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestHandler_Export(t *testing.T) {
	f := newFixture(t)
	cl := f.generate(t)
	h := NewHandler(f.svc)
	e := echo.New()

	tests := []struct {
		format      string
		contentType string
		filename    string
	}{
		{"", "text/csv; charset=utf-8", "wildfire_preparedness_plan_resource_checklist_items.csv"},
		{"pdf", "application/pdf", "wildfire_preparedness_plan_resource_checklist_items.pdf"},
		{"XLSX", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "wildfire_preparedness_plan_resource_checklist_items.xlsx"},
	}
	for _, tt := range tests {
		t.Run("format "+tt.format, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c := e.NewContext(newRequest(http.MethodGet, "/?format="+tt.format, ""), rec)
			c.SetParamNames("id")
			c.SetParamValues(cl.ID.String())
			if err := h.Export(c); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := rec.Header().Get(echo.HeaderContentType); got != tt.contentType {
				t.Errorf("unexpected content type %q", got)
			}
			want := `attachment; filename="` + tt.filename + `"`
			if got := rec.Header().Get(echo.HeaderContentDisposition); got != want {
				t.Errorf("unexpected disposition %q", got)
			}
			if rec.Body.Len() == 0 {
				t.Error("empty export")
			}
		})
	}

	c := e.NewContext(newRequest(http.MethodGet, "/?format=odt", ""), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues(cl.ID.String())
	if got := apperr.HTTPStatus(h.Export(c)); got != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", got)
	}
}
