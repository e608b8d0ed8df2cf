package plan

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/climavet/climavet/internal/platform/apperr"
	"github.com/climavet/climavet/internal/platform/db"
)

type planRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &planRepoPG{pool: pool} }

func (r *planRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const planCols = `id, clinic_id, disaster_category, name, description,
	preparation_steps, response_steps, recovery_steps, emergency_contacts,
	supplies_needed, training_requirements, created_at`

func (r *planRepoPG) scanPlan(row pgx.Row) (*DisasterPlan, error) {
	var p DisasterPlan
	err := row.Scan(&p.ID, &p.ClinicID, &p.DisasterCategory, &p.Name, &p.Description,
		&p.PreparationSteps, &p.ResponseSteps, &p.RecoverySteps, &p.EmergencyContacts,
		&p.SuppliesNeeded, &p.TrainingRequirements, &p.CreatedAt)
	return &p, err
}

func (r *planRepoPG) Create(ctx context.Context, p *DisasterPlan) error {
	p.ID = uuid.New()
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO disaster_plans (id, clinic_id, disaster_category, name, description,
			preparation_steps, response_steps, recovery_steps, emergency_contacts,
			supplies_needed, training_requirements)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING created_at`,
		p.ID, p.ClinicID, p.DisasterCategory, p.Name, p.Description,
		p.PreparationSteps, p.ResponseSteps, p.RecoverySteps, p.EmergencyContacts,
		p.SuppliesNeeded, p.TrainingRequirements).Scan(&p.CreatedAt)
	if db.IsForeignKeyViolation(err) {
		return apperr.NotFound("clinic %s", p.ClinicID)
	}
	return err
}

func (r *planRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*DisasterPlan, error) {
	p, err := r.scanPlan(r.conn(ctx).QueryRow(ctx, `SELECT `+planCols+` FROM disaster_plans WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("disaster plan %s", id)
	}
	return p, err
}

// Delete removes the plan. Its checklists cascade.
func (r *planRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM disaster_plans WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("disaster plan %s", id)
	}
	return nil
}

func (r *planRepoPG) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*DisasterPlan, int, error) {
	query := `SELECT ` + planCols + ` FROM disaster_plans WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM disaster_plans WHERE 1=1`
	var args []interface{}
	idx := 1

	if p, ok := params["clinic_id"]; ok {
		query += fmt.Sprintf(` AND clinic_id = $%d`, idx)
		countQuery += fmt.Sprintf(` AND clinic_id = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["disaster_category"]; ok {
		query += fmt.Sprintf(` AND disaster_category = $%d`, idx)
		countQuery += fmt.Sprintf(` AND disaster_category = $%d`, idx)
		args = append(args, p)
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*DisasterPlan
	for rows.Next() {
		p, err := r.scanPlan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}
