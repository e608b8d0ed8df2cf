package plan

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, p *DisasterPlan) error
	GetByID(ctx context.Context, id uuid.UUID) (*DisasterPlan, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// Search filters by clinic_id and disaster_category.
	Search(ctx context.Context, params map[string]string, limit, offset int) ([]*DisasterPlan, int, error)
}
