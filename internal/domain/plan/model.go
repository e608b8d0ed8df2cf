package plan

import (
	"time"

	"github.com/google/uuid"

	"github.com/climavet/climavet/internal/domain/catalog"
)

// DisasterPlan maps to the disaster_plans table. The step, contact and supply
// lists are copied from the protocol when the plan is generated and are not
// linked to the catalog afterwards.
type DisasterPlan struct {
	ID                   uuid.UUID         `db:"id" json:"id"`
	ClinicID             uuid.UUID         `db:"clinic_id" json:"clinic_id"`
	DisasterCategory     catalog.Category  `db:"disaster_category" json:"disaster_category"`
	Name                 string            `db:"name" json:"name"`
	Description          string            `db:"description" json:"description"`
	PreparationSteps     []string          `db:"preparation_steps" json:"preparation_steps"`
	ResponseSteps        []string          `db:"response_steps" json:"response_steps"`
	RecoverySteps        []string          `db:"recovery_steps" json:"recovery_steps"`
	EmergencyContacts    []catalog.Contact `db:"emergency_contacts" json:"emergency_contacts"`
	SuppliesNeeded       []string          `db:"supplies_needed" json:"supplies_needed"`
	TrainingRequirements []string          `db:"training_requirements" json:"training_requirements"`
	CreatedAt            time.Time         `db:"created_at" json:"created_at"`
}

// GenerateRequest is the body of POST /disaster-plans/generate.
type GenerateRequest struct {
	ClinicID         string `json:"clinic_id"`
	DisasterCategory string `json:"disaster_category"`
}
