package service

import (
	"errors"
	"math"
	"sort"
	"time"

	"github.com/news-interactions-api/internal/apperr"
	"github.com/news-interactions-api/internal/config"
	"github.com/news-interactions-api/internal/metrics"
	"github.com/news-interactions-api/internal/models"
	"github.com/news-interactions-api/internal/repository"
	"github.com/samber/lo"
)

// pager normalizes page requests against the configured limits
type pager struct {
	defaultSize int
	maxSize     int
}

func newPager(cfg config.PaginationConfig) pager {
	p := pager{defaultSize: cfg.DefaultPageSize, maxSize: cfg.MaxPageSize}
	if p.defaultSize < 1 {
		p.defaultSize = 20
	}
	if p.maxSize < p.defaultSize {
		p.maxSize = p.defaultSize
	}
	return p
}

// normalize applies defaults and limits. Pages whose offset would overflow
// are rejected.
func (p pager) normalize(req models.PageRequest) (models.PageRequest, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 {
		req.PageSize = p.defaultSize
	}
	if req.PageSize > p.maxSize {
		req.PageSize = p.maxSize
	}
	if req.Order != "desc" {
		req.Order = "asc"
	}
	if req.Page > math.MaxInt/req.PageSize {
		return req, apperr.Validation("page %d is out of range", req.Page)
	}
	return req, nil
}

// paginate orders items by creation time and slices out one page. Ties keep
// insertion order.
func paginate[T any](items []T, createdAt func(T) time.Time, req models.PageRequest) *models.Page[T] {
	ordered := append([]T(nil), items...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return createdAt(ordered[i]).Before(createdAt(ordered[j]))
	})
	if req.Descending() {
		ordered = lo.Reverse(ordered)
	}
	return models.NewPage(lo.Subset(ordered, req.Offset(), uint(req.PageSize)), len(ordered), req)
}

// storeError classifies a repository failure. Typed errors pass through.
func storeError(err error, articleID string) error {
	var typed *apperr.Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &typed):
		return err
	case errors.Is(err, repository.ErrArticleNotFound):
		return apperr.NotFound("article %s not found", articleID)
	default:
		return apperr.Internal(err, "storage failure")
	}
}

// observe counts a mutation outcome and returns err unchanged
func observe(operation string, err error) error {
	outcome := metrics.OutcomeOK
	if err != nil {
		outcome = apperr.KindOf(err).String()
	}
	metrics.Mutations.WithLabelValues(operation, outcome).Inc()
	return err
}

func utcNow() time.Time {
	return time.Now().UTC()
}
