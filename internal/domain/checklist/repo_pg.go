package checklist

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/climavet/climavet/internal/platform/apperr"
	"github.com/climavet/climavet/internal/platform/db"
)

// =========== Checklist Repository ===========

type checklistRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &checklistRepoPG{pool: pool} }

func (r *checklistRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const checklistCols = `rc.id, rc.clinic_id, rc.disaster_plan_id, rc.name, rc.description,
	rc.last_reviewed, rc.review_frequency, rc.review_notes, rc.is_active, rc.is_completed,
	rc.completion_percentage, rc.created_at, rc.updated_at`

func (r *checklistRepoPG) scanChecklist(row pgx.Row) (*Checklist, error) {
	var c Checklist
	err := row.Scan(&c.ID, &c.ClinicID, &c.DisasterPlanID, &c.Name, &c.Description,
		&c.LastReviewed, &c.ReviewFrequency, &c.ReviewNotes, &c.IsActive, &c.IsCompleted,
		&c.CompletionPercentage, &c.CreatedAt, &c.UpdatedAt)
	return &c, err
}

func (r *checklistRepoPG) CreateWithItems(ctx context.Context, c *Checklist, items []*Item) error {
	return db.InTx(ctx, r.pool, func(ctx context.Context) error {
		c.ID = uuid.New()
		err := r.conn(ctx).QueryRow(ctx, `
			INSERT INTO resource_checklists (id, clinic_id, disaster_plan_id, name, description,
				last_reviewed, review_frequency, review_notes, is_active, is_completed, completion_percentage)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
			RETURNING created_at, updated_at`,
			c.ID, c.ClinicID, c.DisasterPlanID, c.Name, c.Description,
			c.LastReviewed, c.ReviewFrequency, c.ReviewNotes, c.IsActive, c.IsCompleted,
			c.CompletionPercentage).Scan(&c.CreatedAt, &c.UpdatedAt)
		switch {
		case db.IsUniqueViolation(err):
			return apperr.Conflict("an active checklist already exists for clinic %s and plan %s",
				c.ClinicID, c.DisasterPlanID)
		case db.IsForeignKeyViolation(err):
			return apperr.NotFound("clinic %s or disaster plan %s", c.ClinicID, c.DisasterPlanID)
		case err != nil:
			return err
		}

		for _, it := range items {
			it.ID = uuid.New()
			it.ChecklistID = c.ID
			if err := r.conn(ctx).QueryRow(ctx, `
				INSERT INTO checklist_items (id, checklist_id, name, description, category,
					unit_of_measure, units_needed, current_units, status, status_locked, priority,
					is_essential, storage_recommendations)
				VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
				RETURNING created_at, updated_at`,
				it.ID, it.ChecklistID, it.Name, it.Description, it.Category,
				it.UnitOfMeasure, it.UnitsNeeded, it.CurrentUnits, it.Status, it.StatusLocked, it.Priority,
				it.IsEssential, it.StorageRecommendations).Scan(&it.CreatedAt, &it.UpdatedAt); err != nil {
				return fmt.Errorf("insert item %q: %w", it.Name, err)
			}
		}
		return nil
	})
}

func (r *checklistRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Checklist, error) {
	c, err := r.scanChecklist(r.conn(ctx).QueryRow(ctx,
		`SELECT `+checklistCols+` FROM resource_checklists rc WHERE rc.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("checklist %s", id)
	}
	return c, err
}

func (r *checklistRepoPG) Update(ctx context.Context, c *Checklist) error {
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE resource_checklists SET name=$2, description=$3, last_reviewed=$4,
			review_frequency=$5, review_notes=$6, is_active=$7, is_completed=$8,
			completion_percentage=$9, updated_at=NOW()
		WHERE id = $1
		RETURNING updated_at`,
		c.ID, c.Name, c.Description, c.LastReviewed,
		c.ReviewFrequency, c.ReviewNotes, c.IsActive, c.IsCompleted,
		c.CompletionPercentage).Scan(&c.UpdatedAt)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return apperr.NotFound("checklist %s", c.ID)
	case db.IsUniqueViolation(err):
		return apperr.Conflict("an active checklist already exists for clinic %s and plan %s",
			c.ClinicID, c.DisasterPlanID)
	}
	return err
}

func (r *checklistRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM resource_checklists WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("checklist %s", id)
	}
	return nil
}

func (r *checklistRepoPG) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Checklist, int, error) {
	from := ` FROM resource_checklists rc JOIN disaster_plans dp ON dp.id = rc.disaster_plan_id WHERE 1=1`
	query := `SELECT ` + checklistCols + from
	countQuery := `SELECT COUNT(*)` + from
	var args []interface{}
	idx := 1

	if p, ok := params["clinic_id"]; ok {
		query += fmt.Sprintf(` AND rc.clinic_id = $%d`, idx)
		countQuery += fmt.Sprintf(` AND rc.clinic_id = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["disaster_plan_id"]; ok {
		query += fmt.Sprintf(` AND rc.disaster_plan_id = $%d`, idx)
		countQuery += fmt.Sprintf(` AND rc.disaster_plan_id = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["disaster_category"]; ok {
		query += fmt.Sprintf(` AND dp.disaster_category = $%d`, idx)
		countQuery += fmt.Sprintf(` AND dp.disaster_category = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["is_active"]; ok {
		active, err := strconv.ParseBool(p)
		if err != nil {
			return nil, 0, apperr.Validation("invalid is_active %q", p)
		}
		query += fmt.Sprintf(` AND rc.is_active = $%d`, idx)
		countQuery += fmt.Sprintf(` AND rc.is_active = $%d`, idx)
		args = append(args, active)
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY rc.created_at DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Checklist
	for rows.Next() {
		c, err := r.scanChecklist(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, c)
	}
	return items, total, rows.Err()
}

func (r *checklistRepoPG) ListScheduled(ctx context.Context) ([]*Checklist, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+checklistCols+` FROM resource_checklists rc
		WHERE rc.is_active AND rc.review_frequency <> 'NONE'
		ORDER BY rc.last_reviewed ASC NULLS FIRST, rc.created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*Checklist
	for rows.Next() {
		c, err := r.scanChecklist(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// =========== Item Repository ===========

type itemRepoPG struct{ pool *pgxpool.Pool }

func NewItemRepoPG(pool *pgxpool.Pool) ItemRepository { return &itemRepoPG{pool: pool} }

func (r *itemRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const itemCols = `id, checklist_id, name, description, category, unit_of_measure,
	units_needed, current_units, status, status_locked, priority, is_essential,
	storage_recommendations, supplier_info, estimated_cost, expiry_date, storage_location,
	notes, is_completed, completed_at, created_at, updated_at`

const itemOrder = ` ORDER BY CASE priority WHEN 'CRITICAL' THEN 0 WHEN 'HIGH' THEN 1
	WHEN 'MEDIUM' THEN 2 WHEN 'LOW' THEN 3 ELSE 4 END, name`

func (r *itemRepoPG) scanItem(row pgx.Row) (*Item, error) {
	var it Item
	err := row.Scan(&it.ID, &it.ChecklistID, &it.Name, &it.Description, &it.Category, &it.UnitOfMeasure,
		&it.UnitsNeeded, &it.CurrentUnits, &it.Status, &it.StatusLocked, &it.Priority, &it.IsEssential,
		&it.StorageRecommendations, &it.SupplierInfo, &it.EstimatedCost, &it.ExpiryDate, &it.StorageLocation,
		&it.Notes, &it.IsCompleted, &it.CompletedAt, &it.CreatedAt, &it.UpdatedAt)
	return &it, err
}

func (r *itemRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Item, error) {
	it, err := r.scanItem(r.conn(ctx).QueryRow(ctx, `SELECT `+itemCols+` FROM checklist_items WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("checklist item %s", id)
	}
	return it, err
}

func (r *itemRepoPG) Update(ctx context.Context, it *Item) error {
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE checklist_items SET units_needed=$2, current_units=$3, status=$4, status_locked=$5,
			supplier_info=$6, estimated_cost=$7, expiry_date=$8, storage_location=$9, notes=$10,
			is_completed=$11, completed_at=$12, updated_at=NOW()
		WHERE id = $1
		RETURNING updated_at`,
		it.ID, it.UnitsNeeded, it.CurrentUnits, it.Status, it.StatusLocked,
		it.SupplierInfo, it.EstimatedCost, it.ExpiryDate, it.StorageLocation, it.Notes,
		it.IsCompleted, it.CompletedAt).Scan(&it.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound("checklist item %s", it.ID)
	}
	return err
}

func (r *itemRepoPG) ListByChecklist(ctx context.Context, checklistID uuid.UUID, params map[string]string) ([]*Item, error) {
	where, args, err := itemFilters(checklistID, params)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + itemCols + ` FROM checklist_items WHERE ` + where + itemOrder

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*Item
	for rows.Next() {
		it, err := r.scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// itemFilters builds the WHERE clause of ListByChecklist. Category matches
// the whole tag, ignoring case.
func itemFilters(checklistID uuid.UUID, params map[string]string) (string, []interface{}, error) {
	where := `checklist_id = $1`
	args := []interface{}{checklistID}
	idx := 2

	if p, ok := params["status"]; ok {
		where += fmt.Sprintf(` AND status = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["category"]; ok {
		where += fmt.Sprintf(` AND lower(category) = lower($%d)`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["priority"]; ok {
		where += fmt.Sprintf(` AND priority = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["essential"]; ok {
		essential, err := strconv.ParseBool(p)
		if err != nil {
			return "", nil, apperr.Validation("invalid essential %q", p)
		}
		where += fmt.Sprintf(` AND is_essential = $%d`, idx)
		args = append(args, essential)
	}
	return where, args, nil
}
