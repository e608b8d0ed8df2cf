package checklist

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// DueReview is one checklist found due by a review sweep.
type DueReview struct {
	ChecklistID     uuid.UUID       `json:"checklist_id"`
	ClinicID        uuid.UUID       `json:"clinic_id"`
	Name            string          `json:"name"`
	ReviewFrequency ReviewFrequency `json:"review_frequency"`
	LastReviewed    *time.Time      `json:"last_reviewed"`
	NextReviewAt    *time.Time      `json:"next_review_at"`
}

// SweepReviews returns the active checklists whose review is due and logs
// each one. It changes nothing.
func (s *Service) SweepReviews(ctx context.Context) ([]DueReview, error) {
	scheduled, err := s.checklists.ListScheduled(ctx)
	if err != nil {
		return nil, fmt.Errorf("list scheduled checklists: %w", err)
	}
	now := s.now()
	due := []DueReview{}
	for _, c := range scheduled {
		if !IsReviewDue(c, now) {
			continue
		}
		d := DueReview{
			ChecklistID:     c.ID,
			ClinicID:        c.ClinicID,
			Name:            c.Name,
			ReviewFrequency: c.ReviewFrequency,
			LastReviewed:    c.LastReviewed,
			NextReviewAt:    NextReviewAt(c),
		}
		due = append(due, d)
		s.logger.Warn().
			Str("checklist_id", c.ID.String()).
			Str("clinic_id", c.ClinicID.String()).
			Str("review_frequency", string(c.ReviewFrequency)).
			Msg("checklist review due")
	}
	s.logger.Info().Int("scheduled", len(scheduled)).Int("due", len(due)).Msg("review sweep finished")
	return due, nil
}

// NewReviewScheduler returns a stopped cron scheduler that runs the review
// sweep on spec, a standard five-field cron expression.
func NewReviewScheduler(spec string, svc *Service, logger zerolog.Logger, timeout time.Duration) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if _, err := svc.SweepReviews(ctx); err != nil {
			logger.Error().Err(err).Msg("review sweep failed")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("schedule review sweep %q: %w", spec, err)
	}
	return c, nil
}
