package checklist

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// CreateWithItems inserts the checklist and its items atomically. A
	// second active checklist for the same clinic and plan is a conflict.
	CreateWithItems(ctx context.Context, c *Checklist, items []*Item) error
	GetByID(ctx context.Context, id uuid.UUID) (*Checklist, error)
	Update(ctx context.Context, c *Checklist) error
	// Delete removes the checklist; its items cascade.
	Delete(ctx context.Context, id uuid.UUID) error
	// Search filters by clinic_id, disaster_plan_id, disaster_category and
	// is_active.
	Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Checklist, int, error)
	// ListScheduled returns active checklists with a review frequency.
	ListScheduled(ctx context.Context) ([]*Checklist, error)
}

type ItemRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Item, error)
	Update(ctx context.Context, it *Item) error
	// ListByChecklist returns items ordered by priority rank then name,
	// filtered by status, category, priority and essential.
	ListByChecklist(ctx context.Context, checklistID uuid.UUID, params map[string]string) ([]*Item, error)
}

// TxRunner runs fn inside a transaction; repositories called with the ctx
// it passes join that transaction.
type TxRunner interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}
