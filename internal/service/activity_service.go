package service

import (
	"context"

	"github.com/news-interactions-api/internal/apperr"
	"github.com/news-interactions-api/internal/models"
	"github.com/news-interactions-api/internal/repository"
)

// DefaultSummaryLimit is the number of actions in the frequency summary
const DefaultSummaryLimit = 5

// activityService is the concrete implementation of ActivityService
type activityService struct {
	activities repository.ActivityRepository
	pages      pager
}

// newActivityService creates a new ActivityService
func newActivityService(activities repository.ActivityRepository, pages pager) *activityService {
	return &activityService{activities: activities, pages: pages}
}

// List returns matching activity entries, newest first
func (s *activityService) List(ctx context.Context, filter models.ActivityFilter, req models.PageRequest) (*models.Page[*models.Activity], error) {
	if filter.Action != "" && !models.ValidActions[filter.Action] {
		return nil, apperr.Validation("unknown action %q", filter.Action)
	}
	req, err := s.pages.normalize(req)
	if err != nil {
		return nil, err
	}
	req.Order = "desc"

	items, total, err := s.activities.List(ctx, filter, req.PageSize, req.Offset())
	if err != nil {
		return nil, apperr.Internal(err, "failed to list activity")
	}
	return models.NewPage(items, total, req), nil
}

// Summary returns the most frequent actions. limit <= 0 selects
// DefaultSummaryLimit and the result never exceeds the number of known actions.
func (s *activityService) Summary(ctx context.Context, limit int) ([]models.ActionCount, error) {
	if limit <= 0 {
		limit = DefaultSummaryLimit
	}
	if limit > len(models.ValidActions) {
		limit = len(models.ValidActions)
	}

	counts, err := s.activities.Summary(ctx, limit)
	if err != nil {
		return nil, apperr.Internal(err, "failed to summarize activity")
	}
	if counts == nil {
		counts = []models.ActionCount{}
	}
	return counts, nil
}
