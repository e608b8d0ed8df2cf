package clinic

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/climavet/climavet/internal/platform/apperr"
)

// -- Mock Repositories --

type mockClinicRepo struct {
	clinics map[uuid.UUID]*Clinic
}

func newMockClinicRepo() *mockClinicRepo {
	return &mockClinicRepo{clinics: make(map[uuid.UUID]*Clinic)}
}

func (m *mockClinicRepo) Create(_ context.Context, c *Clinic) error {
	c.ID = uuid.New()
	c.CreatedAt = time.Now()
	c.UpdatedAt = time.Now()
	m.clinics[c.ID] = c
	return nil
}

func (m *mockClinicRepo) GetByID(_ context.Context, id uuid.UUID) (*Clinic, error) {
	c, ok := m.clinics[id]
	if !ok {
		return nil, apperr.NotFound("clinic %s", id)
	}
	return c, nil
}

func (m *mockClinicRepo) Update(_ context.Context, c *Clinic) error {
	if _, ok := m.clinics[c.ID]; !ok {
		return apperr.NotFound("clinic %s", c.ID)
	}
	m.clinics[c.ID] = c
	return nil
}

func (m *mockClinicRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.clinics[id]; !ok {
		return apperr.NotFound("clinic %s", id)
	}
	delete(m.clinics, id)
	return nil
}

func (m *mockClinicRepo) Search(_ context.Context, params map[string]string, limit, offset int) ([]*Clinic, int, error) {
	var result []*Clinic
	for _, c := range m.clinics {
		if city, ok := params["city"]; ok && c.City != city {
			continue
		}
		result = append(result, c)
	}
	return result, len(result), nil
}

type mockRiskRepo struct {
	assessments []*RiskAssessment
}

func (m *mockRiskRepo) Create(_ context.Context, a *RiskAssessment) error {
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	m.assessments = append(m.assessments, a)
	return nil
}

func (m *mockRiskRepo) byClinic(clinicID uuid.UUID) []*RiskAssessment {
	var out []*RiskAssessment
	for _, a := range m.assessments {
		if a.ClinicID == clinicID {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AssessmentDate.After(out[j].AssessmentDate)
	})
	return out
}

func (m *mockRiskRepo) ListByClinic(_ context.Context, clinicID uuid.UUID, limit, offset int) ([]*RiskAssessment, int, error) {
	out := m.byClinic(clinicID)
	return out, len(out), nil
}

func (m *mockRiskRepo) Latest(_ context.Context, clinicID uuid.UUID) (*RiskAssessment, error) {
	out := m.byClinic(clinicID)
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func newTestService() *Service {
	return NewService(newMockClinicRepo(), &mockRiskRepo{})
}

func validClinic() *Clinic {
	return &Clinic{
		Name:       "Riverside Animal Hospital",
		Address:    "12 Bank St",
		City:       "Ottawa",
		Province:   "ON",
		PostalCode: "K1P 5N2",
	}
}

// -- Clinic Tests --

func TestCreateClinic(t *testing.T) {
	svc := newTestService()
	c := validClinic()
	c.SpeciesTypes = []string{"equine", "EQUINE", "feline"}
	if err := svc.CreateClinic(context.Background(), c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.ID == uuid.Nil {
		t.Error("expected ID to be set")
	}
	if c.ClinicType != TypePrivate {
		t.Errorf("expected default clinic type PRIVATE, got %s", c.ClinicType)
	}
	if len(c.SpeciesTypes) != 2 || c.SpeciesTypes[0] != "EQUINE" || c.SpeciesTypes[1] != "FELINE" {
		t.Errorf("unexpected species types %v", c.SpeciesTypes)
	}
	if c.ServiceTypes == nil {
		t.Error("expected empty service types, got nil")
	}
}

func TestCreateClinic_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Clinic)
	}{
		{"missing name", func(c *Clinic) { c.Name = "  " }},
		{"missing address", func(c *Clinic) { c.Address = "" }},
		{"missing city", func(c *Clinic) { c.City = "" }},
		{"missing province", func(c *Clinic) { c.Province = "" }},
		{"missing postal code", func(c *Clinic) { c.PostalCode = "" }},
		{"bad clinic type", func(c *Clinic) { c.ClinicType = "SPACESHIP" }},
		{"bad species", func(c *Clinic) { c.SpeciesTypes = []string{"DRAGON"} }},
		{"bad service", func(c *Clinic) { c.ServiceTypes = []string{"GROOMING"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService()
			c := validClinic()
			tt.mutate(c)
			err := svc.CreateClinic(context.Background(), c)
			if !apperr.IsValidation(err) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestGetClinic_NotFound(t *testing.T) {
	svc := newTestService()
	_, err := svc.GetClinic(context.Background(), uuid.New())
	if !apperr.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestUpdateClinic(t *testing.T) {
	svc := newTestService()
	c := validClinic()
	svc.CreateClinic(context.Background(), c)

	c.Name = "Riverside Veterinary Centre"
	c.ClinicType = "teaching_hospital"
	if err := svc.UpdateClinic(context.Background(), c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := svc.GetClinic(context.Background(), c.ID)
	if got.Name != "Riverside Veterinary Centre" || got.ClinicType != TypeTeachingHospital {
		t.Errorf("unexpected clinic after update: %+v", got)
	}
}

func TestUpdateClinic_MissingID(t *testing.T) {
	svc := newTestService()
	if err := svc.UpdateClinic(context.Background(), validClinic()); !apperr.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestDeleteClinic(t *testing.T) {
	svc := newTestService()
	c := validClinic()
	svc.CreateClinic(context.Background(), c)

	if err := svc.DeleteClinic(context.Background(), c.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.GetClinic(context.Background(), c.ID); !apperr.IsNotFound(err) {
		t.Errorf("expected clinic to be gone, got %v", err)
	}
}

// -- Risk Assessment Tests --

func TestOverallScore(t *testing.T) {
	a := &RiskAssessment{
		FloodRisk: 2, WildfireRisk: 5, HeatwaveRisk: 1,
		PowerOutageRisk: 0, AirPollutionRisk: 3, ErosionRisk: 4,
		EarthquakeRisk: 9,
	}
	if got := a.OverallScore(); got != 5 {
		t.Errorf("expected 5, got %d", got)
	}
}

func TestOverallRiskScore_NoAssessment(t *testing.T) {
	svc := newTestService()
	c := validClinic()
	svc.CreateClinic(context.Background(), c)

	score, err := svc.OverallRiskScore(context.Background(), c.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if score.Score != nil {
		t.Errorf("expected no score, got %d", *score.Score)
	}
}

func TestOverallRiskScore_UsesLatest(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	c := validClinic()
	svc.CreateClinic(ctx, c)

	older := &RiskAssessment{ClinicID: c.ID, AssessmentDate: time.Date(2023, 1, 10, 0, 0, 0, 0, time.UTC), FloodRisk: 9}
	latest := &RiskAssessment{
		ClinicID:       c.ID,
		AssessmentDate: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		FloodRisk:      2, WildfireRisk: 5, HeatwaveRisk: 1,
		PowerOutageRisk: 0, AirPollutionRisk: 3, ErosionRisk: 4,
	}
	if err := svc.CreateRiskAssessment(ctx, latest); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.CreateRiskAssessment(ctx, older); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	score, err := svc.OverallRiskScore(ctx, c.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if score.Score == nil || *score.Score != 5 {
		t.Fatalf("expected score 5, got %v", score.Score)
	}
	if *score.AssessmentID != latest.ID {
		t.Error("expected score to come from the latest assessment")
	}
}

func TestOverallRiskScore_UnknownClinic(t *testing.T) {
	svc := newTestService()
	if _, err := svc.OverallRiskScore(context.Background(), uuid.New()); !apperr.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestCreateRiskAssessment_Defaults(t *testing.T) {
	svc := newTestService()
	svc.now = func() time.Time { return time.Date(2024, 3, 5, 15, 30, 0, 0, time.UTC) }
	c := validClinic()
	svc.CreateClinic(context.Background(), c)

	a := &RiskAssessment{ClinicID: c.ID, FloodRisk: 3}
	if err := svc.CreateRiskAssessment(context.Background(), a); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !a.AssessmentDate.Equal(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("expected assessment date to default to today, got %s", a.AssessmentDate)
	}
	if a.Vulnerabilities == nil || a.Recommendations == nil {
		t.Error("expected empty lists, got nil")
	}
}

func TestCreateRiskAssessment_Validation(t *testing.T) {
	svc := newTestService()
	c := validClinic()
	svc.CreateClinic(context.Background(), c)

	tests := []struct {
		name string
		a    *RiskAssessment
	}{
		{"missing clinic", &RiskAssessment{}},
		{"negative score", &RiskAssessment{ClinicID: c.ID, FloodRisk: -1}},
		{"score above ten", &RiskAssessment{ClinicID: c.ID, AvalancheRisk: 11}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := svc.CreateRiskAssessment(context.Background(), tt.a); !apperr.IsValidation(err) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestCreateRiskAssessment_UnknownClinic(t *testing.T) {
	svc := newTestService()
	err := svc.CreateRiskAssessment(context.Background(), &RiskAssessment{ClinicID: uuid.New()})
	if !apperr.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}
