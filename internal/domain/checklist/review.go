package checklist

import (
	"strings"
	"time"

	"github.com/climavet/climavet/internal/platform/apperr"
)

const day = 24 * time.Hour

// cadences are fixed day counts. Months, quarters and years are not
// calendar-aware.
var cadences = map[ReviewFrequency]time.Duration{
	ReviewWeekly:     7 * day,
	ReviewBiweekly:   14 * day,
	ReviewMonthly:    30 * day,
	ReviewQuarterly:  90 * day,
	ReviewAnnually:   365 * day,
	ReviewBiannually: 182 * day,
}

// Valid reports whether f is a known frequency.
func (f ReviewFrequency) Valid() bool {
	if f == ReviewNone {
		return true
	}
	_, ok := cadences[f]
	return ok
}

// Cadence returns the review interval. ok is false for NONE.
func (f ReviewFrequency) Cadence() (time.Duration, bool) {
	d, ok := cadences[f]
	return d, ok
}

// ParseReviewFrequency accepts a frequency code in any case.
func ParseReviewFrequency(s string) (ReviewFrequency, error) {
	f := ReviewFrequency(strings.ToUpper(strings.TrimSpace(s)))
	if !f.Valid() {
		return "", apperr.Validation("unknown review_frequency %q", s)
	}
	return f, nil
}

// NextReviewAt returns when the checklist falls due. It is nil when no
// review is scheduled or the checklist has never been reviewed.
func NextReviewAt(c *Checklist) *time.Time {
	d, ok := c.ReviewFrequency.Cadence()
	if !ok || c.LastReviewed == nil {
		return nil
	}
	next := c.LastReviewed.Add(d)
	return &next
}

// IsReviewDue reports whether the checklist needs reviewing at now. A
// checklist without a frequency is never due; one that was never reviewed
// always is.
func IsReviewDue(c *Checklist, now time.Time) bool {
	if _, ok := c.ReviewFrequency.Cadence(); !ok {
		return false
	}
	if c.LastReviewed == nil {
		return true
	}
	return !now.Before(*NextReviewAt(c))
}

// ReviewStatus is the answer of GET /checklists/:id/review-status.
type ReviewStatus struct {
	ReviewFrequency ReviewFrequency `json:"review_frequency"`
	LastReviewed    *time.Time      `json:"last_reviewed"`
	ReviewDue       bool            `json:"review_due"`
	NextReviewAt    *time.Time      `json:"next_review_at"`
}

func reviewStatus(c *Checklist, now time.Time) ReviewStatus {
	return ReviewStatus{
		ReviewFrequency: c.ReviewFrequency,
		LastReviewed:    c.LastReviewed,
		ReviewDue:       IsReviewDue(c, now),
		NextReviewAt:    NextReviewAt(c),
	}
}
