package checklist

import (
	"time"

	"github.com/google/uuid"

	"github.com/climavet/climavet/internal/domain/catalog"
)

// Status is the inventory state of a checklist item.
type Status string

const (
	StatusInStock    Status = "IN_STOCK"
	StatusLowStock   Status = "LOW_STOCK"
	StatusOutOfStock Status = "OUT_OF_STOCK"
	StatusOrdered    Status = "ORDERED"
	StatusNotNeeded  Status = "NOT_NEEDED"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusInStock, StatusLowStock, StatusOutOfStock, StatusOrdered, StatusNotNeeded:
		return true
	}
	return false
}

// Manual reports whether s can only be set by hand.
func (s Status) Manual() bool {
	return s == StatusOrdered || s == StatusNotNeeded
}

// ReviewFrequency is how often a checklist should be re-examined.
type ReviewFrequency string

const (
	ReviewNone       ReviewFrequency = "NONE"
	ReviewWeekly     ReviewFrequency = "WEEKLY"
	ReviewBiweekly   ReviewFrequency = "BIWEEKLY"
	ReviewMonthly    ReviewFrequency = "MONTHLY"
	ReviewQuarterly  ReviewFrequency = "QUARTERLY"
	ReviewAnnually   ReviewFrequency = "ANNUALLY"
	ReviewBiannually ReviewFrequency = "BIANNUALLY"
)

// Checklist maps to the resource_checklists table.
type Checklist struct {
	ID                   uuid.UUID       `db:"id" json:"id"`
	ClinicID             uuid.UUID       `db:"clinic_id" json:"clinic_id"`
	DisasterPlanID       uuid.UUID       `db:"disaster_plan_id" json:"disaster_plan_id"`
	Name                 string          `db:"name" json:"name"`
	Description          string          `db:"description" json:"description"`
	LastReviewed         *time.Time      `db:"last_reviewed" json:"last_reviewed,omitempty"`
	ReviewFrequency      ReviewFrequency `db:"review_frequency" json:"review_frequency"`
	ReviewNotes          *string         `db:"review_notes" json:"review_notes,omitempty"`
	IsActive             bool            `db:"is_active" json:"is_active"`
	IsCompleted          bool            `db:"is_completed" json:"is_completed"`
	CompletionPercentage float64         `db:"completion_percentage" json:"completion_percentage"`
	CreatedAt            time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time       `db:"updated_at" json:"updated_at"`

	Items []*Item `db:"-" json:"items,omitempty"`
}

// Item maps to the checklist_items table. Status is derived from the unit
// counts only when recomputed explicitly; it may be stale in between.
type Item struct {
	ID                     uuid.UUID        `db:"id" json:"id"`
	ChecklistID            uuid.UUID        `db:"checklist_id" json:"checklist_id"`
	Name                   string           `db:"name" json:"name"`
	Description            string           `db:"description" json:"description"`
	Category               string           `db:"category" json:"category"`
	UnitOfMeasure          string           `db:"unit_of_measure" json:"unit_of_measure"`
	UnitsNeeded            int              `db:"units_needed" json:"units_needed"`
	CurrentUnits           int              `db:"current_units" json:"current_units"`
	Status                 Status           `db:"status" json:"status"`
	StatusLocked           bool             `db:"status_locked" json:"status_locked"`
	Priority               catalog.Priority `db:"priority" json:"priority"`
	IsEssential            bool             `db:"is_essential" json:"is_essential"`
	StorageRecommendations string           `db:"storage_recommendations" json:"storage_recommendations,omitempty"`
	SupplierInfo           *string          `db:"supplier_info" json:"supplier_info,omitempty"`
	EstimatedCost          *float64         `db:"estimated_cost" json:"estimated_cost,omitempty"`
	ExpiryDate             *time.Time       `db:"expiry_date" json:"expiry_date,omitempty"`
	StorageLocation        *string          `db:"storage_location" json:"storage_location,omitempty"`
	Notes                  *string          `db:"notes" json:"notes,omitempty"`
	IsCompleted            bool             `db:"is_completed" json:"is_completed"`
	CompletedAt            *time.Time       `db:"completed_at" json:"completed_at,omitempty"`
	CreatedAt              time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt              time.Time        `db:"updated_at" json:"updated_at"`
}

// -- Request bodies --

type GenerateRequest struct {
	ClinicID       string `json:"clinic_id"`
	DisasterPlanID string `json:"disaster_plan_id"`
}

// ChecklistPatch carries the editable checklist fields. Nil fields are left
// unchanged.
type ChecklistPatch struct {
	Name            *string          `json:"name"`
	Description     *string          `json:"description"`
	ReviewFrequency *ReviewFrequency `json:"review_frequency"`
	ReviewNotes     *string          `json:"review_notes"`
	IsActive        *bool            `json:"is_active"`
}

// InventoryPatch carries the inventory fields of an item. Nil fields are
// left unchanged. Applying it never recomputes the status.
type InventoryPatch struct {
	CurrentUnits    *int       `json:"current_units"`
	UnitsNeeded     *int       `json:"units_needed"`
	SupplierInfo    *string    `json:"supplier_info"`
	EstimatedCost   *float64   `json:"estimated_cost"`
	ExpiryDate      *time.Time `json:"expiry_date"`
	StorageLocation *string    `json:"storage_location"`
	Notes           *string    `json:"notes"`
}

type StatusRequest struct {
	Status Status `json:"status"`
}

type ReviewRequest struct {
	Notes *string `json:"notes"`
}
