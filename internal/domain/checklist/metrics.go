package checklist

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Metrics summarizes a checklist's items.
type Metrics struct {
	ChecklistID          uuid.UUID      `json:"checklist_id"`
	CompletionPercentage float64        `json:"completion_percentage"`
	TotalItems           int            `json:"total_items"`
	EssentialItems       int            `json:"essential_items"`
	CountsByCategory     map[string]int `json:"counts_by_category"`
	CountsByPriority     map[string]int `json:"counts_by_priority"`
	CountsByStatus       map[string]int `json:"counts_by_status"`
	ReviewDue            bool           `json:"review_due"`
	NextReviewAt         *time.Time     `json:"next_review_at"`
}

// CompletionPercentage is the share of IN_STOCK items, rounded to two
// decimals. An empty checklist is 100.
func CompletionPercentage(items []*Item) float64 {
	if len(items) == 0 {
		return 100
	}
	inStock := 0
	for _, it := range items {
		if it.Status == StatusInStock {
			inStock++
		}
	}
	return round2(100 * float64(inStock) / float64(len(items)))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// CountBy builds a frequency table keyed by key(item).
func CountBy(items []*Item, key func(*Item) string) map[string]int {
	out := make(map[string]int)
	for _, it := range items {
		out[key(it)]++
	}
	return out
}

// ComputeMetrics derives every metric of c from items at now.
func ComputeMetrics(c *Checklist, items []*Item, now time.Time) Metrics {
	essential := 0
	for _, it := range items {
		if it.IsEssential {
			essential++
		}
	}
	return Metrics{
		ChecklistID:          c.ID,
		CompletionPercentage: CompletionPercentage(items),
		TotalItems:           len(items),
		EssentialItems:       essential,
		CountsByCategory:     CountBy(items, func(it *Item) string { return it.Category }),
		CountsByPriority:     CountBy(items, func(it *Item) string { return string(it.Priority) }),
		CountsByStatus:       CountBy(items, func(it *Item) string { return string(it.Status) }),
		ReviewDue:            IsReviewDue(c, now),
		NextReviewAt:         NextReviewAt(c),
	}
}
