package catalog

// Contact is an emergency contact listed by a protocol.
type Contact struct {
	Name  string `toml:"name" json:"name"`
	Role  string `toml:"role" json:"role"`
	Phone string `toml:"phone" json:"phone,omitempty"`
}

// ProtocolTemplate is the preparedness protocol for one disaster category. It
// is the seed data copied into a disaster plan at creation time.
type ProtocolTemplate struct {
	Category             Category  `toml:"-" json:"category"`
	PreparationSteps     []string  `toml:"preparation_steps" json:"preparation_steps"`
	ResponseSteps        []string  `toml:"response_steps" json:"response_steps"`
	RecoverySteps        []string  `toml:"recovery_steps" json:"recovery_steps"`
	EmergencyContacts    []Contact `toml:"emergency_contacts" json:"emergency_contacts"`
	SuppliesNeeded       []string  `toml:"supplies_needed" json:"supplies_needed"`
	TrainingRequirements []string  `toml:"training_requirements" json:"training_requirements"`
}

// ResourceTemplateItem is one recommended physical resource. Name is unique
// within a category's item list.
type ResourceTemplateItem struct {
	Name                   string   `toml:"name" json:"name"`
	Description            string   `toml:"description" json:"description"`
	UnitsNeeded            int      `toml:"units_needed" json:"units_needed"`
	UnitOfMeasure          string   `toml:"unit_of_measure" json:"unit_of_measure"`
	Category               string   `toml:"category" json:"category"`
	Priority               Priority `toml:"priority" json:"priority"`
	IsEssential            bool     `toml:"is_essential" json:"is_essential"`
	StorageRecommendations string   `toml:"storage_recommendations" json:"storage_recommendations,omitempty"`
}

// CategorySummary describes one catalog entry for listings.
type CategorySummary struct {
	Category      Category `json:"category"`
	Name          string   `json:"name"`
	HasProtocol   bool     `json:"has_protocol"`
	ResourceItems int      `json:"resource_items"`
}

func (p ProtocolTemplate) clone() ProtocolTemplate {
	out := p
	out.PreparationSteps = append([]string(nil), p.PreparationSteps...)
	out.ResponseSteps = append([]string(nil), p.ResponseSteps...)
	out.RecoverySteps = append([]string(nil), p.RecoverySteps...)
	out.EmergencyContacts = append([]Contact(nil), p.EmergencyContacts...)
	out.SuppliesNeeded = append([]string(nil), p.SuppliesNeeded...)
	out.TrainingRequirements = append([]string(nil), p.TrainingRequirements...)
	return out
}

func cloneItems(items []ResourceTemplateItem) []ResourceTemplateItem {
	if items == nil {
		return []ResourceTemplateItem{}
	}
	return append([]ResourceTemplateItem(nil), items...)
}
