package clinic

import (
	"time"

	"github.com/google/uuid"
)

// Clinic types.
const (
	TypePrivate          = "PRIVATE"
	TypeCorporate        = "CORPORATE"
	TypeMobile           = "MOBILE"
	TypeAnimalShelter    = "ANIMAL_SHELTER"
	TypeTeachingHospital = "TEACHING_HOSPITAL"
	TypeWildlifeFacility = "WILDLIFE_FACILITY"
)

var clinicTypes = []string{
	TypePrivate, TypeCorporate, TypeMobile,
	TypeAnimalShelter, TypeTeachingHospital, TypeWildlifeFacility,
}

var speciesTypes = []string{
	"SMALL_ANIMAL", "EQUINE", "FELINE", "MIXED", "EXOTIC_AND_AVIAN",
}

var serviceTypes = []string{
	"GENERAL_VETERINARY_CARE",
	"EMERGENCY_OR_CRITICAL_CARE",
	"URGENT_CARE",
	"SPECIALTY_SERVICES",
	"MOBILE_VETERINARY_SERVICES",
	"ANIMAL_SHELTER_SERVICES",
	"TEACHING_HOSPITAL_SERVICES",
	"WILDLIFE_FACILITY_SERVICES",
}

// Clinic maps to the clinics table.
type Clinic struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Address      string    `db:"address" json:"address"`
	Phone        *string   `db:"phone" json:"phone,omitempty"`
	Email        *string   `db:"email" json:"email,omitempty"`
	City         string    `db:"city" json:"city"`
	Province     string    `db:"province" json:"province"`
	PostalCode   string    `db:"postal_code" json:"postal_code"`
	ClinicType   string    `db:"clinic_type" json:"clinic_type"`
	SpeciesTypes []string  `db:"species_types" json:"species_types"`
	ServiceTypes []string  `db:"service_types" json:"service_types"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// RiskAssessment maps to the risk_assessments table. Each risk is scored
// 0 (none) to 10 (extreme).
type RiskAssessment struct {
	ID               uuid.UUID `db:"id" json:"id"`
	ClinicID         uuid.UUID `db:"clinic_id" json:"clinic_id"`
	AssessmentDate   time.Time `db:"assessment_date" json:"assessment_date"`
	FloodRisk        int       `db:"flood_risk" json:"flood_risk"`
	WildfireRisk     int       `db:"wildfire_risk" json:"wildfire_risk"`
	HeatwaveRisk     int       `db:"heatwave_risk" json:"heatwave_risk"`
	PowerOutageRisk  int       `db:"power_outage_risk" json:"power_outage_risk"`
	AirPollutionRisk int       `db:"air_pollution_risk" json:"air_pollution_risk"`
	ErosionRisk      int       `db:"erosion_risk" json:"erosion_risk"`
	HurricaneRisk    int       `db:"hurricane_risk" json:"hurricane_risk"`
	TornadoRisk      int       `db:"tornado_risk" json:"tornado_risk"`
	ColdWaveRisk     int       `db:"cold_wave_risk" json:"cold_wave_risk"`
	BlizzardRisk     int       `db:"blizzard_risk" json:"blizzard_risk"`
	EarthquakeRisk   int       `db:"earthquake_risk" json:"earthquake_risk"`
	AvalancheRisk    int       `db:"avalanche_risk" json:"avalanche_risk"`
	Vulnerabilities  []string  `db:"vulnerabilities" json:"vulnerabilities"`
	Recommendations  []string  `db:"recommendations" json:"recommendations"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

// primaryScores are the six risks that feed the overall score.
func (a *RiskAssessment) primaryScores() []int {
	return []int{
		a.FloodRisk, a.WildfireRisk, a.HeatwaveRisk,
		a.PowerOutageRisk, a.AirPollutionRisk, a.ErosionRisk,
	}
}

func (a *RiskAssessment) allScores() map[string]int {
	return map[string]int{
		"flood_risk":         a.FloodRisk,
		"wildfire_risk":      a.WildfireRisk,
		"heatwave_risk":      a.HeatwaveRisk,
		"power_outage_risk":  a.PowerOutageRisk,
		"air_pollution_risk": a.AirPollutionRisk,
		"erosion_risk":       a.ErosionRisk,
		"hurricane_risk":     a.HurricaneRisk,
		"tornado_risk":       a.TornadoRisk,
		"cold_wave_risk":     a.ColdWaveRisk,
		"blizzard_risk":      a.BlizzardRisk,
		"earthquake_risk":    a.EarthquakeRisk,
		"avalanche_risk":     a.AvalancheRisk,
	}
}

// OverallScore is the highest of the six primary risk scores.
func (a *RiskAssessment) OverallScore() int {
	scores := a.primaryScores()
	max := scores[0]
	for _, s := range scores[1:] {
		if s > max {
			max = s
		}
	}
	return max
}

// RiskScore is the overall risk of a clinic. Score is nil when the clinic has
// never been assessed.
type RiskScore struct {
	ClinicID       uuid.UUID  `json:"clinic_id"`
	Score          *int       `json:"overall_risk_score"`
	AssessmentID   *uuid.UUID `json:"assessment_id,omitempty"`
	AssessmentDate *time.Time `json:"assessment_date,omitempty"`
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
