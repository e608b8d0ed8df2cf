package clinic

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

// =========== Clinic Repository ===========

type clinicRepoPG struct{ pool *pgxpool.Pool }

func NewClinicRepoPG(pool *pgxpool.Pool) ClinicRepository { return &clinicRepoPG{pool: pool} }

func (r *clinicRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const clinicCols = `id, name, address, phone, email, city, province, postal_code,
	clinic_type, species_types, service_types, created_at, updated_at`

func (r *clinicRepoPG) scanClinic(row pgx.Row) (*Clinic, error) {
	var c Clinic
	err := row.Scan(&c.ID, &c.Name, &c.Address, &c.Phone, &c.Email, &c.City, &c.Province, &c.PostalCode,
		&c.ClinicType, &c.SpeciesTypes, &c.ServiceTypes, &c.CreatedAt, &c.UpdatedAt)
	return &c, err
}

func (r *clinicRepoPG) Create(ctx context.Context, c *Clinic) error {
	c.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO clinics (id, name, address, phone, email, city, province, postal_code,
			clinic_type, species_types, service_types)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING created_at, updated_at`,
		c.ID, c.Name, c.Address, c.Phone, c.Email, c.City, c.Province, c.PostalCode,
		c.ClinicType, c.SpeciesTypes, c.ServiceTypes).Scan(&c.CreatedAt, &c.UpdatedAt)
}

func (r *clinicRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Clinic, error) {
	c, err := r.scanClinic(r.conn(ctx).QueryRow(ctx, `SELECT `+clinicCols+` FROM clinics WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("clinic %s", id)
	}
	return c, err
}

func (r *clinicRepoPG) Update(ctx context.Context, c *Clinic) error {
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE clinics SET name=$2, address=$3, phone=$4, email=$5, city=$6, province=$7,
			postal_code=$8, clinic_type=$9, species_types=$10, service_types=$11, updated_at=NOW()
		WHERE id = $1
		RETURNING created_at, updated_at`,
		c.ID, c.Name, c.Address, c.Phone, c.Email, c.City, c.Province,
		c.PostalCode, c.ClinicType, c.SpeciesTypes, c.ServiceTypes).Scan(&c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound("clinic %s", c.ID)
	}
	return err
}

// Delete removes the clinic. Plans, checklists and assessments cascade.
func (r *clinicRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM clinics WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("clinic %s", id)
	}
	return nil
}

func (r *clinicRepoPG) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Clinic, int, error) {
	query := `SELECT ` + clinicCols + ` FROM clinics WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM clinics WHERE 1=1`
	var args []interface{}
	idx := 1

	if p, ok := params["name"]; ok {
		query += fmt.Sprintf(` AND name ILIKE $%d`, idx)
		countQuery += fmt.Sprintf(` AND name ILIKE $%d`, idx)
		args = append(args, db.ContainsPattern(p))
		idx++
	}
	if p, ok := params["city"]; ok {
		query += fmt.Sprintf(` AND lower(city) = lower($%d)`, idx)
		countQuery += fmt.Sprintf(` AND lower(city) = lower($%d)`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["province"]; ok {
		query += fmt.Sprintf(` AND lower(province) = lower($%d)`, idx)
		countQuery += fmt.Sprintf(` AND lower(province) = lower($%d)`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["clinic_type"]; ok {
		query += fmt.Sprintf(` AND clinic_type = $%d`, idx)
		countQuery += fmt.Sprintf(` AND clinic_type = $%d`, idx)
		args = append(args, p)
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY name ASC, created_at DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Clinic
	for rows.Next() {
		c, err := r.scanClinic(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, c)
	}
	return items, total, rows.Err()
}

// =========== Risk Assessment Repository ===========

type riskRepoPG struct{ pool *pgxpool.Pool }

func NewRiskAssessmentRepoPG(pool *pgxpool.Pool) RiskAssessmentRepository {
	return &riskRepoPG{pool: pool}
}

func (r *riskRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const riskCols = `id, clinic_id, assessment_date, flood_risk, wildfire_risk, heatwave_risk,
	power_outage_risk, air_pollution_risk, erosion_risk, hurricane_risk, tornado_risk,
	cold_wave_risk, blizzard_risk, earthquake_risk, avalanche_risk,
	vulnerabilities, recommendations, created_at`

func (r *riskRepoPG) scanAssessment(row pgx.Row) (*RiskAssessment, error) {
	var a RiskAssessment
	err := row.Scan(&a.ID, &a.ClinicID, &a.AssessmentDate, &a.FloodRisk, &a.WildfireRisk, &a.HeatwaveRisk,
		&a.PowerOutageRisk, &a.AirPollutionRisk, &a.ErosionRisk, &a.HurricaneRisk, &a.TornadoRisk,
		&a.ColdWaveRisk, &a.BlizzardRisk, &a.EarthquakeRisk, &a.AvalancheRisk,
		&a.Vulnerabilities, &a.Recommendations, &a.CreatedAt)
	return &a, err
}

func (r *riskRepoPG) Create(ctx context.Context, a *RiskAssessment) error {
	a.ID = uuid.New()
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO risk_assessments (id, clinic_id, assessment_date, flood_risk, wildfire_risk,
			heatwave_risk, power_outage_risk, air_pollution_risk, erosion_risk, hurricane_risk,
			tornado_risk, cold_wave_risk, blizzard_risk, earthquake_risk, avalanche_risk,
			vulnerabilities, recommendations)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
		RETURNING created_at`,
		a.ID, a.ClinicID, a.AssessmentDate, a.FloodRisk, a.WildfireRisk,
		a.HeatwaveRisk, a.PowerOutageRisk, a.AirPollutionRisk, a.ErosionRisk, a.HurricaneRisk,
		a.TornadoRisk, a.ColdWaveRisk, a.BlizzardRisk, a.EarthquakeRisk, a.AvalancheRisk,
		a.Vulnerabilities, a.Recommendations).Scan(&a.CreatedAt)
	if db.IsForeignKeyViolation(err) {
		return apperr.NotFound("clinic %s", a.ClinicID)
	}
	return err
}

func (r *riskRepoPG) ListByClinic(ctx context.Context, clinicID uuid.UUID, limit, offset int) ([]*RiskAssessment, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM risk_assessments WHERE clinic_id = $1`, clinicID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+riskCols+` FROM risk_assessments WHERE clinic_id = $1
		ORDER BY assessment_date DESC, created_at DESC LIMIT $2 OFFSET $3`, clinicID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*RiskAssessment
	for rows.Next() {
		a, err := r.scanAssessment(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, rows.Err()
}

func (r *riskRepoPG) Latest(ctx context.Context, clinicID uuid.UUID) (*RiskAssessment, error) {
	a, err := r.scanAssessment(r.conn(ctx).QueryRow(ctx, `SELECT `+riskCols+` FROM risk_assessments
		WHERE clinic_id = $1 ORDER BY assessment_date DESC, created_at DESC LIMIT 1`, clinicID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return a, err
}
