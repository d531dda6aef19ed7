package service

import (
	"context"

	"github.com/news-interactions-api/internal/apperr"
	"github.com/news-interactions-api/internal/models"
	"github.com/news-interactions-api/internal/repository"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

// engagementService is the concrete implementation of EngagementService
type engagementService struct {
	articles     repository.ArticleRepository
	interactions repository.InteractionRepository
	recorder     ActivityRecorder
	pages        pager
	log          zerolog.Logger
}

// newEngagementService creates a new EngagementService
func newEngagementService(repos *repository.Repositories, recorder ActivityRecorder, pages pager, log zerolog.Logger) *engagementService {
	return &engagementService{
		articles:     repos.Article,
		interactions: repos.Interaction,
		recorder:     recorder,
		pages:        pages,
		log:          log.With().Str("service", "engagement").Logger(),
	}
}

// ToggleLike flips the actor's like and moves the article counter with it
func (s *engagementService) ToggleLike(ctx context.Context, actor models.Identity, articleID string) (*models.LikeState, error) {
	state := &models.LikeState{ArticleID: articleID}

	err := s.interactions.Apply(ctx, articleID, actor.UserID, func(rec *models.Interaction, likeCount *int) error {
		rec.Liked = !rec.Liked
		delta := -1
		if rec.Liked {
			delta = 1
		}
		*likeCount = models.ClampCount(*likeCount + delta)

		state.Liked = rec.Liked
		state.LikeCount = *likeCount
		return nil
	})
	if err != nil {
		return nil, observe("news.like", storeError(err, articleID))
	}
	observe("news.like", nil)

	s.log.Debug().
		Str("article_id", articleID).
		Str("user_id", actor.UserID).
		Bool("liked", state.Liked).
		Int("like_count", state.LikeCount).
		Msg("Like toggled")

	s.recorder.Record(ctx, &models.Activity{
		ActorID:   actor.UserID,
		ActorName: actor.Username,
		Action:    models.ActionNewsLike,
		ArticleID: articleID,
		Meta:      map[string]any{"liked": state.Liked},
	})
	return state, nil
}

// ToggleBookmark flips the actor's bookmark
func (s *engagementService) ToggleBookmark(ctx context.Context, actor models.Identity, articleID string) (*models.BookmarkState, error) {
	state := &models.BookmarkState{ArticleID: articleID}

	err := s.interactions.Apply(ctx, articleID, actor.UserID, func(rec *models.Interaction, _ *int) error {
		rec.Bookmarked = !rec.Bookmarked
		state.Bookmarked = rec.Bookmarked
		return nil
	})
	if err != nil {
		return nil, observe("news.bookmark", storeError(err, articleID))
	}
	observe("news.bookmark", nil)

	s.recorder.Record(ctx, &models.Activity{
		ActorID:   actor.UserID,
		ActorName: actor.Username,
		Action:    models.ActionNewsBookmark,
		ArticleID: articleID,
		Meta:      map[string]any{"bookmarked": state.Bookmarked},
	})
	return state, nil
}

func (s *engagementService) loadArticle(ctx context.Context, articleID string) (*models.Article, error) {
	article, err := s.articles.GetByExternalID(ctx, articleID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load article")
	}
	if article == nil {
		return nil, apperr.NotFound("article %s not found", articleID)
	}
	return article, nil
}

// LikeCount returns the article's like counter
func (s *engagementService) LikeCount(ctx context.Context, articleID string) (int, error) {
	article, err := s.loadArticle(ctx, articleID)
	if err != nil {
		return 0, err
	}
	return article.LikeCount, nil
}

// Status returns the actor's like and bookmark state on an article
func (s *engagementService) Status(ctx context.Context, actor models.Identity, articleID string) (*models.InteractionStatus, error) {
	article, err := s.loadArticle(ctx, articleID)
	if err != nil {
		return nil, err
	}

	status := &models.InteractionStatus{ArticleID: articleID, LikeCount: article.LikeCount}
	rec, err := s.interactions.Get(ctx, articleID, actor.UserID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load interaction")
	}
	if rec != nil {
		status.Liked = rec.Liked
		status.Bookmarked = rec.Bookmarked
	}
	return status, nil
}

// ListBookmarks returns the actor's bookmarked articles, most recent first
func (s *engagementService) ListBookmarks(ctx context.Context, actor models.Identity, req models.PageRequest) (*models.Page[*models.ArticleView], error) {
	req, err := s.pages.normalize(req)
	if err != nil {
		return nil, err
	}
	req.Order = "desc"

	articles, total, err := s.interactions.ListBookmarked(ctx, actor.UserID, req.PageSize, req.Offset())
	if err != nil {
		return nil, apperr.Internal(err, "failed to list bookmarks")
	}
	views := lo.Map(articles, func(a *models.Article, _ int) *models.ArticleView { return a.View() })
	return models.NewPage(views, total, req), nil
}
