package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/news-interactions-api/internal/database"
	"github.com/news-interactions-api/internal/models"
)

var (
	// ErrArticleNotFound is returned by atomic updates on an unknown article
	ErrArticleNotFound = errors.New("article not found")
	// ErrUsernameTaken is returned when a username belongs to another account
	ErrUsernameTaken = errors.New("username already taken")
)

// ArticleRepository defines the interface for article aggregate operations.
// Comment, reply and vote state lives only inside the article.
type ArticleRepository interface {
	GetByExternalID(ctx context.Context, articleID string) (*models.Article, error)
	Upsert(ctx context.Context, article *models.Article) error
	Update(ctx context.Context, articleID string, fn func(*models.Article) error) error
	ListCommentsByAuthor(ctx context.Context, authorID string, limit, offset int) ([]*models.AuthoredComment, int, error)
	ArticleIDsWithAuthor(ctx context.Context, authorID string) ([]string, error)
}

// InteractionRepository defines the interface for per-user like/bookmark records
type InteractionRepository interface {
	Apply(ctx context.Context, articleID, userID string, fn func(rec *models.Interaction, likeCount *int) error) error
	Get(ctx context.Context, articleID, userID string) (*models.Interaction, error)
	ListBookmarked(ctx context.Context, userID string, limit, offset int) ([]*models.Article, int, error)
}

// ActivityRepository defines the interface for the activity log
type ActivityRepository interface {
	Create(ctx context.Context, activity *models.Activity) error
	List(ctx context.Context, filter models.ActivityFilter, limit, offset int) ([]*models.Activity, int, error)
	Summary(ctx context.Context, limit int) ([]models.ActionCount, error)
}

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Upsert(ctx context.Context, user *models.User) (bool, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) (bool, error)
}

// Repositories holds all repository interfaces
type Repositories struct {
	Article     ArticleRepository
	Interaction InteractionRepository
	Activity    ActivityRepository
	User        UserRepository
}

// New creates all repositories with the given database connection
func New(db *database.DB) *Repositories {
	return &Repositories{
		Article:     NewArticleRepo(db),
		Interaction: NewInteractionRepo(db),
		Activity:    NewActivityRepo(db),
		User:        NewUserRepo(db),
	}
}

// Helper functions for nullable columns

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
