package catalog

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/climavet/climavet/internal/platform/apperr"
)

// Category is the disaster category code used as the lookup key into both
// catalogs.
type Category string

const (
	Flood        Category = "FLOOD"
	Wildfire     Category = "WILDFIRE"
	Heatwave     Category = "HEATWAVE"
	PowerOutage  Category = "POWER_OUTAGE"
	AirPollution Category = "AIR_POLLUTION"
	Erosion      Category = "EROSION"
	Hurricane    Category = "HURRICANE"
	Tornado      Category = "TORNADO"
	ColdWave     Category = "COLD_WAVE"
	Blizzard     Category = "BLIZZARD"
	Earthquake   Category = "EARTHQUAKE"
	Avalanche    Category = "AVALANCHE"
)

// AllCategories lists every known category in display order.
var AllCategories = []Category{
	Flood, Wildfire, Heatwave, PowerOutage, AirPollution, Erosion,
	Hurricane, Tornado, ColdWave, Blizzard, Earthquake, Avalanche,
}

var categoryPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z _-]*$`)

var titleCaser = cases.Title(language.English)

// ParseCategory normalizes s into a Category code. "Power Outage",
// "power-outage" and "POWER_OUTAGE" all yield PowerOutage. A malformed value is
// a validation error. Well-formed codes that are not known categories are
// returned as-is so that catalog lookups can report them as not found.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", apperr.Validation("disaster_category is required")
	}
	if !categoryPattern.MatchString(s) {
		return "", apperr.Validation("malformed disaster_category %q", s)
	}
	code := strings.ToUpper(s)
	code = strings.NewReplacer(" ", "_", "-", "_").Replace(code)
	return Category(code), nil
}

// Known reports whether c is one of AllCategories.
func (c Category) Known() bool {
	for _, k := range AllCategories {
		if k == c {
			return true
		}
	}
	return false
}

// DisplayName renders the code for people: POWER_OUTAGE -> "Power Outage".
func (c Category) DisplayName() string {
	words := strings.ReplaceAll(strings.ToLower(string(c)), "_", " ")
	return titleCaser.String(words)
}

func (c Category) String() string { return string(c) }

// Priority ranks how urgently an item must be acquired.
type Priority string

const (
	PriorityCritical Priority = "CRITICAL"
	PriorityHigh     Priority = "HIGH"
	PriorityMedium   Priority = "MEDIUM"
	PriorityLow      Priority = "LOW"
)

// Rank orders priorities from most to least urgent. Unknown values sort last.
func (p Priority) Rank() int {
	switch p {
	case PriorityCritical:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	default:
		return 4
	}
}

// Valid reports whether p is one of the four known priorities.
func (p Priority) Valid() bool { return p.Rank() < 4 }
