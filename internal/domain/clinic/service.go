package clinic

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/climavet/climavet/internal/platform/apperr"
)

const maxRiskScore = 10

type Service struct {
	clinics     ClinicRepository
	assessments RiskAssessmentRepository
	now         func() time.Time
}

func NewService(clinics ClinicRepository, assessments RiskAssessmentRepository) *Service {
	return &Service{clinics: clinics, assessments: assessments, now: time.Now}
}

// -- Clinic --

func (s *Service) CreateClinic(ctx context.Context, c *Clinic) error {
	if err := normalizeClinic(c); err != nil {
		return err
	}
	return s.clinics.Create(ctx, c)
}

// GetClinic returns the clinic or a NotFound error.
func (s *Service) GetClinic(ctx context.Context, id uuid.UUID) (*Clinic, error) {
	return s.clinics.GetByID(ctx, id)
}

func (s *Service) UpdateClinic(ctx context.Context, c *Clinic) error {
	if c.ID == uuid.Nil {
		return apperr.Validation("id is required")
	}
	if err := normalizeClinic(c); err != nil {
		return err
	}
	return s.clinics.Update(ctx, c)
}

func (s *Service) DeleteClinic(ctx context.Context, id uuid.UUID) error {
	return s.clinics.Delete(ctx, id)
}

func (s *Service) ListClinics(ctx context.Context, params map[string]string, limit, offset int) ([]*Clinic, int, error) {
	return s.clinics.Search(ctx, params, limit, offset)
}

func normalizeClinic(c *Clinic) error {
	c.Name = strings.TrimSpace(c.Name)
	required := []struct {
		field, value string
	}{
		{"name", c.Name},
		{"address", c.Address},
		{"city", c.City},
		{"province", c.Province},
		{"postal_code", c.PostalCode},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return apperr.Validation("%s is required", r.field)
		}
	}
	if c.ClinicType == "" {
		c.ClinicType = TypePrivate
	}
	c.ClinicType = strings.ToUpper(c.ClinicType)
	if !contains(clinicTypes, c.ClinicType) {
		return apperr.Validation("unknown clinic_type %q", c.ClinicType)
	}
	var err error
	if c.SpeciesTypes, err = normalizeCodes("species_types", c.SpeciesTypes, speciesTypes); err != nil {
		return err
	}
	if c.ServiceTypes, err = normalizeCodes("service_types", c.ServiceTypes, serviceTypes); err != nil {
		return err
	}
	return nil
}

// normalizeCodes upper-cases and de-duplicates codes, keeping their order.
func normalizeCodes(field string, codes, allowed []string) ([]string, error) {
	out := make([]string, 0, len(codes))
	seen := make(map[string]bool, len(codes))
	for _, code := range codes {
		code = strings.ToUpper(strings.TrimSpace(code))
		if !contains(allowed, code) {
			return nil, apperr.Validation("unknown %s value %q", field, code)
		}
		if !seen[code] {
			seen[code] = true
			out = append(out, code)
		}
	}
	return out, nil
}

// -- Risk Assessment --

// CreateRiskAssessment records an assessment for an existing clinic. The
// assessment date defaults to today.
func (s *Service) CreateRiskAssessment(ctx context.Context, a *RiskAssessment) error {
	if a.ClinicID == uuid.Nil {
		return apperr.Validation("clinic_id is required")
	}
	scores := a.allScores()
	names := make([]string, 0, len(scores))
	for name := range scores {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if v := scores[name]; v < 0 || v > maxRiskScore {
			return apperr.Validation("%s must be between 0 and %d, got %d", name, maxRiskScore, v)
		}
	}
	if a.AssessmentDate.IsZero() {
		a.AssessmentDate = s.now().UTC().Truncate(24 * time.Hour)
	}
	if a.Vulnerabilities == nil {
		a.Vulnerabilities = []string{}
	}
	if a.Recommendations == nil {
		a.Recommendations = []string{}
	}
	if _, err := s.clinics.GetByID(ctx, a.ClinicID); err != nil {
		return err
	}
	return s.assessments.Create(ctx, a)
}

func (s *Service) ListRiskAssessments(ctx context.Context, clinicID uuid.UUID, limit, offset int) ([]*RiskAssessment, int, error) {
	if _, err := s.clinics.GetByID(ctx, clinicID); err != nil {
		return nil, 0, err
	}
	return s.assessments.ListByClinic(ctx, clinicID, limit, offset)
}

// LatestAssessment returns the clinic's most recent assessment, or nil.
func (s *Service) LatestAssessment(ctx context.Context, clinicID uuid.UUID) (*RiskAssessment, error) {
	return s.assessments.Latest(ctx, clinicID)
}

// OverallRiskScore reduces the clinic's latest assessment to its highest
// primary risk. The score is nil when the clinic has no assessment.
func (s *Service) OverallRiskScore(ctx context.Context, clinicID uuid.UUID) (*RiskScore, error) {
	if _, err := s.clinics.GetByID(ctx, clinicID); err != nil {
		return nil, err
	}
	a, err := s.assessments.Latest(ctx, clinicID)
	if err != nil {
		return nil, fmt.Errorf("latest assessment: %w", err)
	}
	out := &RiskScore{ClinicID: clinicID}
	if a == nil {
		return out, nil
	}
	score := a.OverallScore()
	out.Score = &score
	out.AssessmentID = &a.ID
	out.AssessmentDate = &a.AssessmentDate
	return out, nil
}
