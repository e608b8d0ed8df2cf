package plan

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/climavet/climavet/internal/domain/catalog"
	"github.com/climavet/climavet/internal/domain/clinic"
)

// ClinicLookup resolves the clinic a plan is generated for.
type ClinicLookup interface {
	GetClinic(ctx context.Context, id uuid.UUID) (*clinic.Clinic, error)
}

type Service struct {
	plans   Repository
	clinics ClinicLookup
	catalog *catalog.Catalog
	logger  zerolog.Logger
}

func NewService(plans Repository, clinics ClinicLookup, cat *catalog.Catalog, logger zerolog.Logger) *Service {
	return &Service{plans: plans, clinics: clinics, catalog: cat, logger: logger}
}

// GeneratePlan copies the protocol for category into a new plan owned by the
// clinic. Nothing is written when the clinic or the protocol is missing.
func (s *Service) GeneratePlan(ctx context.Context, clinicID uuid.UUID, category string) (*DisasterPlan, error) {
	cat, err := catalog.ParseCategory(category)
	if err != nil {
		return nil, err
	}
	cl, err := s.clinics.GetClinic(ctx, clinicID)
	if err != nil {
		return nil, err
	}
	proto, err := s.catalog.LookupProtocol(cat)
	if err != nil {
		return nil, err
	}

	display := cat.DisplayName()
	p := &DisasterPlan{
		ClinicID:             cl.ID,
		DisasterCategory:     cat,
		Name:                 fmt.Sprintf("%s Preparedness Plan", cat),
		Description:          fmt.Sprintf("A comprehensive preparedness plan for %s events.", strings.ToLower(display)),
		PreparationSteps:     proto.PreparationSteps,
		ResponseSteps:        proto.ResponseSteps,
		RecoverySteps:        proto.RecoverySteps,
		EmergencyContacts:    proto.EmergencyContacts,
		SuppliesNeeded:       proto.SuppliesNeeded,
		TrainingRequirements: proto.TrainingRequirements,
	}
	if err := s.plans.Create(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("clinic_id", cl.ID.String()).
		Str("plan_id", p.ID.String()).
		Str("disaster_category", string(cat)).
		Msg("disaster plan generated")
	return p, nil
}

func (s *Service) GetPlan(ctx context.Context, id uuid.UUID) (*DisasterPlan, error) {
	return s.plans.GetByID(ctx, id)
}

func (s *Service) DeletePlan(ctx context.Context, id uuid.UUID) error {
	return s.plans.Delete(ctx, id)
}

// ListPlans filters by clinic_id and disaster_category. The category filter
// accepts any spelling ParseCategory does.
func (s *Service) ListPlans(ctx context.Context, params map[string]string, limit, offset int) ([]*DisasterPlan, int, error) {
	if raw, ok := params["disaster_category"]; ok {
		cat, err := catalog.ParseCategory(raw)
		if err != nil {
			return nil, 0, err
		}
		params["disaster_category"] = string(cat)
	}
	return s.plans.Search(ctx, params, limit, offset)
}

// ListClinicPlans lists the plans of an existing clinic.
func (s *Service) ListClinicPlans(ctx context.Context, clinicID uuid.UUID, limit, offset int) ([]*DisasterPlan, int, error) {
	if _, err := s.clinics.GetClinic(ctx, clinicID); err != nil {
		return nil, 0, err
	}
	return s.plans.Search(ctx, map[string]string{"clinic_id": clinicID.String()}, limit, offset)
}
