package clinic

import (
	"context"

	"github.com/google/uuid"
)

type ClinicRepository interface {
	Create(ctx context.Context, c *Clinic) error
	GetByID(ctx context.Context, id uuid.UUID) (*Clinic, error)
	Update(ctx context.Context, c *Clinic) error
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Clinic, int, error)
}

type RiskAssessmentRepository interface {
	Create(ctx context.Context, a *RiskAssessment) error
	ListByClinic(ctx context.Context, clinicID uuid.UUID, limit, offset int) ([]*RiskAssessment, int, error)
	// Latest returns the most recent assessment by assessment date, or nil
	// when the clinic has none.
	Latest(ctx context.Context, clinicID uuid.UUID) (*RiskAssessment, error)
}
