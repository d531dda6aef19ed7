package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/news-interactions-api/internal/apperr"
	"github.com/news-interactions-api/internal/authz"
	"github.com/news-interactions-api/internal/models"
	"github.com/news-interactions-api/internal/repository"
	"github.com/news-interactions-api/internal/validation"
	"github.com/rs/zerolog"
)

// articleService is the concrete implementation of ArticleService
type articleService struct {
	articles  repository.ArticleRepository
	validator *validation.Validator
	log       zerolog.Logger
}

// newArticleService creates a new ArticleService
func newArticleService(articles repository.ArticleRepository, validator *validation.Validator, log zerolog.Logger) *articleService {
	return &articleService{
		articles:  articles,
		validator: validator,
		log:       log.With().Str("service", "article").Logger(),
	}
}

// Upsert stores an article delivered by the article supply. Existing comments
// and likes are preserved.
func (s *articleService) Upsert(ctx context.Context, actor models.Identity, input *models.ArticleInput) (*models.ArticleView, error) {
	if err := authz.Check(authz.UpsertArticle, actor.UserID, actor.Role, ""); err != nil {
		return nil, err
	}
	if err := validation.ToError(s.validator.ValidateArticle(input)); err != nil {
		return nil, err
	}

	article := &models.Article{
		ID:        uuid.New().String(),
		ArticleID: input.ArticleID,
		Title:     input.Title,
		Source:    input.Source,
		Category:  input.Category,
		Summary:   input.Summary,
		Body:      input.Body,
		URL:       input.URL,
	}
	if input.PublishedAt != "" {
		t, _ := time.Parse(time.RFC3339, input.PublishedAt)
		t = t.UTC()
		article.PublishedAt = &t
	}

	if err := s.articles.Upsert(ctx, article); err != nil {
		return nil, apperr.Internal(err, "failed to store article")
	}

	s.log.Info().
		Str("article_id", article.ArticleID).
		Str("source", article.Source).
		Msg("Article upserted")

	return s.Get(ctx, article.ArticleID)
}

// Get returns an article with its comment count
func (s *articleService) Get(ctx context.Context, articleID string) (*models.ArticleView, error) {
	article, err := s.articles.GetByExternalID(ctx, articleID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load article")
	}
	if article == nil {
		return nil, apperr.NotFound("article %s not found", articleID)
	}
	return article.View(), nil
}
