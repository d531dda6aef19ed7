package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/news-interactions-api/internal/database"
	"github.com/news-interactions-api/internal/models"
)

// interactionRepo is the concrete implementation of InteractionRepository
type interactionRepo struct {
	db *database.DB
}

// NewInteractionRepo creates a new interaction repository
func NewInteractionRepo(db *database.DB) InteractionRepository {
	return &interactionRepo{db: db}
}

// Apply locks the article row and the user's interaction record, runs fn and
// persists both. The record is created on first use. The like counter is
// floored at zero.
func (r *interactionRepo) Apply(ctx context.Context, articleID, userID string, fn func(rec *models.Interaction, likeCount *int) error) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		var likeCount int
		err := tx.QueryRowContext(ctx,
			`SELECT like_count FROM articles WHERE external_id = $1 FOR UPDATE`, articleID,
		).Scan(&likeCount)
		if err == sql.ErrNoRows {
			return ErrArticleNotFound
		}
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		rec := models.Interaction{UserID: userID, ArticleID: articleID, CreatedAt: now}
		err = tx.QueryRowContext(ctx, `
			SELECT liked, bookmarked, created_at FROM interactions
			WHERE user_id = $1 AND article_id = $2 FOR UPDATE`,
			userID, articleID,
		).Scan(&rec.Liked, &rec.Bookmarked, &rec.CreatedAt)
		if err != nil && err != sql.ErrNoRows {
			return err
		}

		if err := fn(&rec, &likeCount); err != nil {
			return err
		}
		rec.UpdatedAt = now

		_, err = tx.ExecContext(ctx, `
			INSERT INTO interactions (user_id, article_id, liked, bookmarked, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (user_id, article_id) DO UPDATE SET
				liked = EXCLUDED.liked,
				bookmarked = EXCLUDED.bookmarked,
				updated_at = EXCLUDED.updated_at`,
			rec.UserID, rec.ArticleID, rec.Liked, rec.Bookmarked, rec.CreatedAt, rec.UpdatedAt,
		)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE articles SET like_count = $1 WHERE external_id = $2`,
			models.ClampCount(likeCount), articleID,
		)
		return err
	})
}

// Get retrieves the user's record for an article
func (r *interactionRepo) Get(ctx context.Context, articleID, userID string) (*models.Interaction, error) {
	query := `
		SELECT user_id, article_id, liked, bookmarked, created_at, updated_at
		FROM interactions WHERE user_id = $1 AND article_id = $2
	`
	var rec models.Interaction
	err := r.db.QueryRowContext(ctx, query, userID, articleID).Scan(
		&rec.UserID, &rec.ArticleID, &rec.Liked, &rec.Bookmarked, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListBookmarked returns the articles bookmarked by userID, most recent first
func (r *interactionRepo) ListBookmarked(ctx context.Context, userID string, limit, offset int) ([]*models.Article, int, error) {
	var total int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM interactions WHERE user_id = $1 AND bookmarked`, userID,
	).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	query := `
		SELECT a.id, a.external_id, a.title, a.source, a.category, a.summary, a.body, a.url,
			a.published_at, a.like_count, a.comments, a.created_at, a.updated_at
		FROM interactions i
		JOIN articles a ON a.external_id = i.article_id
		WHERE i.user_id = $1 AND i.bookmarked
		ORDER BY i.updated_at DESC, a.external_id
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var articles []*models.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, 0, err
		}
		articles = append(articles, a)
	}
	return articles, total, rows.Err()
}
