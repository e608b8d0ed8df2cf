package checklist

import (
	"fmt"

	"github.com/climavet/climavet/internal/domain/catalog"
)

// MergeItems combines the baseline items with the category items, using the
// item name as the key. A later entry replaces an earlier one of the same
// name in place, so the result keeps first-seen order.
func MergeItems(lists ...[]catalog.ResourceTemplateItem) []catalog.ResourceTemplateItem {
	var out []catalog.ResourceTemplateItem
	index := make(map[string]int)
	for _, list := range lists {
		for _, it := range list {
			if i, ok := index[it.Name]; ok {
				out[i] = it
				continue
			}
			index[it.Name] = len(out)
			out = append(out, it)
		}
	}
	return out
}

// newChecklist builds an unsaved checklist and its items. Every item starts
// with no stock and OUT_OF_STOCK; the status is not derived at creation.
func newChecklist(clinicName, planName string, templates []catalog.ResourceTemplateItem) (*Checklist, []*Item) {
	c := &Checklist{
		Name:            fmt.Sprintf("%s Resource Checklist", planName),
		Description:     fmt.Sprintf("A customized resource checklist for %s based on the %s.", clinicName, planName),
		ReviewFrequency: ReviewNone,
		IsActive:        true,
	}
	items := make([]*Item, 0, len(templates))
	for _, t := range templates {
		items = append(items, &Item{
			Name:                   t.Name,
			Description:            t.Description,
			Category:               t.Category,
			UnitOfMeasure:          t.UnitOfMeasure,
			UnitsNeeded:            t.UnitsNeeded,
			CurrentUnits:           0,
			Status:                 StatusOutOfStock,
			Priority:               t.Priority,
			IsEssential:            t.IsEssential,
			StorageRecommendations: t.StorageRecommendations,
		})
	}
	return c, items
}
