package checklist

import (
	"bytes"
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/climavet/climavet/internal/domain/catalog"
	"github.com/climavet/climavet/internal/domain/clinic"
	"github.com/climavet/climavet/internal/domain/plan"
	"github.com/climavet/climavet/internal/platform/apperr"
	"github.com/climavet/climavet/internal/platform/export"
)

type ClinicLookup interface {
	GetClinic(ctx context.Context, id uuid.UUID) (*clinic.Clinic, error)
}

type PlanLookup interface {
	GetPlan(ctx context.Context, id uuid.UUID) (*plan.DisasterPlan, error)
}

type Service struct {
	checklists Repository
	items      ItemRepository
	tx         TxRunner
	clinics    ClinicLookup
	plans      PlanLookup
	catalog    *catalog.Catalog
	logger     zerolog.Logger
	now        func() time.Time
}

func NewService(checklists Repository, items ItemRepository, tx TxRunner, clinics ClinicLookup,
	plans PlanLookup, cat *catalog.Catalog, logger zerolog.Logger) *Service {
	return &Service{
		checklists: checklists,
		items:      items,
		tx:         tx,
		clinics:    clinics,
		plans:      plans,
		catalog:    cat,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// -- Generation --

// GenerateChecklist builds a checklist for the plan from the baseline items
// merged with the resource items of the plan's category. A category without
// resource items yields the baseline alone.
func (s *Service) GenerateChecklist(ctx context.Context, clinicID, planID uuid.UUID) (*Checklist, error) {
	cl, err := s.clinics.GetClinic(ctx, clinicID)
	if err != nil {
		return nil, err
	}
	p, err := s.plans.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	if p.ClinicID != cl.ID {
		return nil, apperr.Validation("disaster plan %s does not belong to clinic %s", p.ID, cl.ID)
	}

	c, err := s.create(ctx, cl, p, ReviewNone, true)
	if err != nil {
		return nil, err
	}
	s.logger.Info().
		Str("clinic_id", cl.ID.String()).
		Str("plan_id", p.ID.String()).
		Str("checklist_id", c.ID.String()).
		Int("items", len(c.Items)).
		Msg("resource checklist generated")
	return c, nil
}

func (s *Service) create(ctx context.Context, cl *clinic.Clinic, p *plan.DisasterPlan,
	freq ReviewFrequency, active bool) (*Checklist, error) {
	resources, _ := s.catalog.Resources(p.DisasterCategory)
	c, items := newChecklist(cl.Name, p.Name, MergeItems(s.catalog.Baseline(), resources))
	c.ClinicID = cl.ID
	c.DisasterPlanID = p.ID
	c.ReviewFrequency = freq
	c.IsActive = active
	if err := s.checklists.CreateWithItems(ctx, c, items); err != nil {
		return nil, err
	}
	c.Items = items
	return c, nil
}

// RegenerateChecklist replaces the checklist with a freshly generated one for
// the same clinic and plan. Inventory entered on the old items is discarded;
// the review frequency and active flag carry over.
func (s *Service) RegenerateChecklist(ctx context.Context, id uuid.UUID) (*Checklist, error) {
	var out *Checklist
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		old, err := s.checklists.GetByID(ctx, id)
		if err != nil {
			return err
		}
		cl, err := s.clinics.GetClinic(ctx, old.ClinicID)
		if err != nil {
			return err
		}
		p, err := s.plans.GetPlan(ctx, old.DisasterPlanID)
		if err != nil {
			return err
		}
		if err := s.checklists.Delete(ctx, old.ID); err != nil {
			return err
		}
		out, err = s.create(ctx, cl, p, old.ReviewFrequency, old.IsActive)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().
		Str("old_checklist_id", id.String()).
		Str("checklist_id", out.ID.String()).
		Int("items", len(out.Items)).
		Msg("resource checklist regenerated")
	return out, nil
}

// -- Checklists --

// GetChecklist returns the checklist with its items.
func (s *Service) GetChecklist(ctx context.Context, id uuid.UUID) (*Checklist, error) {
	c, err := s.checklists.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := s.items.ListByChecklist(ctx, id, nil)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*Item{}
	}
	c.Items = items
	return c, nil
}

// ListChecklists filters by clinic_id, disaster_plan_id, disaster_category
// and is_active.
func (s *Service) ListChecklists(ctx context.Context, params map[string]string, limit, offset int) ([]*Checklist, int, error) {
	if raw, ok := params["disaster_category"]; ok {
		cat, err := catalog.ParseCategory(raw)
		if err != nil {
			return nil, 0, err
		}
		params["disaster_category"] = string(cat)
	}
	if raw, ok := params["is_active"]; ok {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, 0, apperr.Validation("invalid is_active %q", raw)
		}
		params["is_active"] = strconv.FormatBool(active)
	}
	return s.checklists.Search(ctx, params, limit, offset)
}

func (s *Service) UpdateChecklist(ctx context.Context, id uuid.UUID, patch ChecklistPatch) (*Checklist, error) {
	c, err := s.checklists.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, apperr.Validation("name must not be empty")
		}
		c.Name = name
	}
	if patch.Description != nil {
		c.Description = *patch.Description
	}
	if patch.ReviewFrequency != nil {
		f, err := ParseReviewFrequency(string(*patch.ReviewFrequency))
		if err != nil {
			return nil, err
		}
		c.ReviewFrequency = f
	}
	if patch.ReviewNotes != nil {
		c.ReviewNotes = patch.ReviewNotes
	}
	if patch.IsActive != nil {
		c.IsActive = *patch.IsActive
	}
	if err := s.checklists.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) DeleteChecklist(ctx context.Context, id uuid.UUID) error {
	return s.checklists.Delete(ctx, id)
}

// MarkChecklistCompleted sets the is_completed flag.
func (s *Service) MarkChecklistCompleted(ctx context.Context, id uuid.UUID, completed bool) error {
	c, err := s.checklists.GetByID(ctx, id)
	if err != nil {
		return err
	}
	c.IsCompleted = completed
	return s.checklists.Update(ctx, c)
}

// -- Items --

// ListItems lists the items of an existing checklist. Filters: status,
// category, priority and essential.
func (s *Service) ListItems(ctx context.Context, checklistID uuid.UUID, params map[string]string) ([]*Item, error) {
	if _, err := s.checklists.GetByID(ctx, checklistID); err != nil {
		return nil, err
	}
	if raw, ok := params["status"]; ok {
		st := Status(strings.ToUpper(raw))
		if !st.Valid() {
			return nil, apperr.Validation("unknown status %q", raw)
		}
		params["status"] = string(st)
	}
	if raw, ok := params["priority"]; ok {
		pr := catalog.Priority(strings.ToUpper(raw))
		if !pr.Valid() {
			return nil, apperr.Validation("unknown priority %q", raw)
		}
		params["priority"] = string(pr)
	}
	if raw, ok := params["essential"]; ok {
		essential, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, apperr.Validation("invalid essential %q", raw)
		}
		params["essential"] = strconv.FormatBool(essential)
	}
	return s.items.ListByChecklist(ctx, checklistID, params)
}

func (s *Service) GetItem(ctx context.Context, id uuid.UUID) (*Item, error) {
	return s.items.GetByID(ctx, id)
}

// UpdateInventory applies patch to the item. The status is left as it was;
// callers recompute it explicitly.
func (s *Service) UpdateInventory(ctx context.Context, id uuid.UUID, patch InventoryPatch) (*Item, error) {
	if patch.CurrentUnits != nil && *patch.CurrentUnits < 0 {
		return nil, apperr.Validation("current_units must not be negative, got %d", *patch.CurrentUnits)
	}
	if patch.UnitsNeeded != nil && *patch.UnitsNeeded < 0 {
		return nil, apperr.Validation("units_needed must not be negative, got %d", *patch.UnitsNeeded)
	}
	if patch.EstimatedCost != nil && *patch.EstimatedCost < 0 {
		return nil, apperr.Validation("estimated_cost must not be negative")
	}

	it, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.CurrentUnits != nil {
		it.CurrentUnits = *patch.CurrentUnits
	}
	if patch.UnitsNeeded != nil {
		it.UnitsNeeded = *patch.UnitsNeeded
	}
	if patch.SupplierInfo != nil {
		it.SupplierInfo = patch.SupplierInfo
	}
	if patch.EstimatedCost != nil {
		it.EstimatedCost = patch.EstimatedCost
	}
	if patch.ExpiryDate != nil {
		it.ExpiryDate = patch.ExpiryDate
	}
	if patch.StorageLocation != nil {
		it.StorageLocation = patch.StorageLocation
	}
	if patch.Notes != nil {
		it.Notes = patch.Notes
	}
	if err := s.items.Update(ctx, it); err != nil {
		return nil, err
	}
	return it, nil
}

// SetItemStatus applies a manual status. Only ORDERED and NOT_NEEDED can be
// set by hand; the derived statuses come from RecomputeItemStatus.
func (s *Service) SetItemStatus(ctx context.Context, id uuid.UUID, status Status) (*Item, error) {
	st := Status(strings.ToUpper(string(status)))
	if !st.Manual() {
		return nil, apperr.Validation("status %q cannot be set manually; use ORDERED or NOT_NEEDED", status)
	}
	it, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	it.Override(st)
	if err := s.items.Update(ctx, it); err != nil {
		return nil, err
	}
	return it, nil
}

// RecomputeItemStatus derives the item status from its unit counts. A
// manually set status survives unless force is true.
func (s *Service) RecomputeItemStatus(ctx context.Context, id uuid.UUID, force bool) (*Item, error) {
	it, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	wasLocked := it.StatusLocked
	changed := it.Recompute(force)
	if changed || wasLocked != it.StatusLocked {
		if err := s.items.Update(ctx, it); err != nil {
			return nil, err
		}
	}
	return it, nil
}

func (s *Service) MarkItemCompleted(ctx context.Context, id uuid.UUID, completed bool) error {
	it, err := s.items.GetByID(ctx, id)
	if err != nil {
		return err
	}
	it.IsCompleted = completed
	if completed {
		now := s.now()
		it.CompletedAt = &now
	} else {
		it.CompletedAt = nil
	}
	return s.items.Update(ctx, it)
}

// Recalculate recomputes every unlocked item of the checklist and stores the
// resulting completion percentage.
func (s *Service) Recalculate(ctx context.Context, id uuid.UUID) (*Checklist, error) {
	var out *Checklist
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		c, err := s.checklists.GetByID(ctx, id)
		if err != nil {
			return err
		}
		items, err := s.items.ListByChecklist(ctx, id, nil)
		if err != nil {
			return err
		}
		for _, it := range items {
			if it.Recompute(false) {
				if err := s.items.Update(ctx, it); err != nil {
					return err
				}
			}
		}
		c.CompletionPercentage = CompletionPercentage(items)
		if err := s.checklists.Update(ctx, c); err != nil {
			return err
		}
		if items == nil {
			items = []*Item{}
		}
		c.Items = items
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// -- Metrics and review --

// Metrics computes the checklist metrics and stores the completion
// percentage when it moved.
func (s *Service) Metrics(ctx context.Context, id uuid.UUID) (*Metrics, error) {
	c, err := s.checklists.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := s.items.ListByChecklist(ctx, id, nil)
	if err != nil {
		return nil, err
	}
	m := ComputeMetrics(c, items, s.now())
	if c.CompletionPercentage != m.CompletionPercentage {
		c.CompletionPercentage = m.CompletionPercentage
		if err := s.checklists.Update(ctx, c); err != nil {
			return nil, err
		}
	}
	return &m, nil
}

// MarkReviewed stamps the checklist as reviewed now.
func (s *Service) MarkReviewed(ctx context.Context, id uuid.UUID, notes *string) (*Checklist, error) {
	c, err := s.checklists.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.now()
	c.LastReviewed = &now
	if notes != nil {
		c.ReviewNotes = notes
	}
	if err := s.checklists.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) ReviewStatus(ctx context.Context, id uuid.UUID) (*ReviewStatus, error) {
	c, err := s.checklists.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	rs := reviewStatus(c, s.now())
	return &rs, nil
}

// -- Export --

// Export is a rendered checklist file.
type Export struct {
	Filename    string
	ContentType string
	Body        []byte
}

var exportHeaders = []string{
	"name", "description", "category", "priority", "units_needed", "current_units",
	"unit_of_measure", "status", "is_essential", "storage_location", "expiry_date",
}

// ExportItems renders the checklist items in the requested format. An empty
// format means CSV.
func (s *Service) ExportItems(ctx context.Context, id uuid.UUID, format string) (*Export, error) {
	f, err := export.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	c, err := s.GetChecklist(ctx, id)
	if err != nil {
		return nil, err
	}

	t := export.Table{
		Title: c.Name,
		Meta: []string{
			"Generated: " + s.now().Format(time.RFC3339),
			"Completion: " + strconv.FormatFloat(c.CompletionPercentage, 'f', 2, 64) + "%",
		},
		Headers: exportHeaders,
	}
	for _, it := range c.Items {
		t.Rows = append(t.Rows, itemRow(it))
	}

	var buf bytes.Buffer
	if err := export.Render(&buf, f, t); err != nil {
		return nil, err
	}
	return &Export{
		Filename:    export.Filename(c.Name, "items", f),
		ContentType: f.ContentType(),
		Body:        buf.Bytes(),
	}, nil
}

func itemRow(it *Item) []string {
	var location, expiry string
	if it.StorageLocation != nil {
		location = *it.StorageLocation
	}
	if it.ExpiryDate != nil {
		expiry = it.ExpiryDate.Format("2006-01-02")
	}
	return []string{
		it.Name,
		it.Description,
		it.Category,
		string(it.Priority),
		strconv.Itoa(it.UnitsNeeded),
		strconv.Itoa(it.CurrentUnits),
		it.UnitOfMeasure,
		string(it.Status),
		strconv.FormatBool(it.IsEssential),
		location,
		expiry,
	}
}
