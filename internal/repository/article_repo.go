package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/news-interactions-api/internal/database"
	"github.com/news-interactions-api/internal/models"
)

const articleColumns = `id, external_id, title, source, category, summary, body, url,
	published_at, like_count, comments, created_at, updated_at`

// repliesOf guards against comments whose replies were stored as JSON null
const repliesOf = `COALESCE(NULLIF(c.value->'replies', 'null'::jsonb), '[]'::jsonb)`

// articleRepo is the concrete implementation of ArticleRepository
type articleRepo struct {
	db *database.DB
}

// NewArticleRepo creates a new article repository
func NewArticleRepo(db *database.DB) ArticleRepository {
	return &articleRepo{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner) (*models.Article, error) {
	var a models.Article
	var publishedAt sql.NullTime
	var comments []byte

	err := row.Scan(
		&a.ID, &a.ArticleID, &a.Title, &a.Source, &a.Category, &a.Summary, &a.Body, &a.URL,
		&publishedAt, &a.LikeCount, &comments, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if publishedAt.Valid {
		a.PublishedAt = &publishedAt.Time
	}
	if len(comments) > 0 {
		if err := json.Unmarshal(comments, &a.Comments); err != nil {
			return nil, fmt.Errorf("failed to decode comments of article %s: %w", a.ArticleID, err)
		}
	}
	if a.Comments == nil {
		a.Comments = []*models.Comment{}
	}
	return &a, nil
}

func encodeComments(comments []*models.Comment) ([]byte, error) {
	if comments == nil {
		comments = []*models.Comment{}
	}
	for _, c := range comments {
		if c.Replies == nil {
			c.Replies = []*models.Reply{}
		}
	}
	return json.Marshal(comments)
}

// GetByExternalID retrieves an article with its comment tree
func (r *articleRepo) GetByExternalID(ctx context.Context, articleID string) (*models.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles WHERE external_id = $1`

	article, err := scanArticle(r.db.QueryRowContext(ctx, query, articleID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return article, nil
}

// Upsert inserts an article or refreshes its metadata. Comments and the like
// counter are never touched by the article supply.
func (r *articleRepo) Upsert(ctx context.Context, article *models.Article) error {
	query := `
		INSERT INTO articles (id, external_id, title, source, category, summary, body, url,
			published_at, like_count, comments, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 0, '[]'::jsonb, $10, $10)
		ON CONFLICT (external_id) DO UPDATE SET
			title = EXCLUDED.title,
			source = EXCLUDED.source,
			category = EXCLUDED.category,
			summary = EXCLUDED.summary,
			body = EXCLUDED.body,
			url = EXCLUDED.url,
			published_at = EXCLUDED.published_at,
			updated_at = EXCLUDED.updated_at
		RETURNING id, like_count, created_at, updated_at
	`
	now := time.Now().UTC()
	return r.db.QueryRowContext(ctx, query,
		article.ID, article.ArticleID, article.Title, article.Source, article.Category,
		article.Summary, article.Body, article.URL, article.PublishedAt, now,
	).Scan(&article.ID, &article.LikeCount, &article.CreatedAt, &article.UpdatedAt)
}

// Update locks the article row, applies fn and writes the result back in one
// transaction. Nothing is written when fn fails.
func (r *articleRepo) Update(ctx context.Context, articleID string, fn func(*models.Article) error) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		query := `SELECT ` + articleColumns + ` FROM articles WHERE external_id = $1 FOR UPDATE`

		article, err := scanArticle(tx.QueryRowContext(ctx, query, articleID))
		if err == sql.ErrNoRows {
			return ErrArticleNotFound
		}
		if err != nil {
			return err
		}

		if err := fn(article); err != nil {
			return err
		}

		comments, err := encodeComments(article.Comments)
		if err != nil {
			return fmt.Errorf("failed to encode comments: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE articles SET comments = $1, like_count = $2, updated_at = $3 WHERE id = $4`,
			comments, models.ClampCount(article.LikeCount), time.Now().UTC(), article.ID,
		)
		return err
	})
}

// ListCommentsByAuthor returns the comments and replies written by authorID
// across all articles, newest first.
func (r *articleRepo) ListCommentsByAuthor(ctx context.Context, authorID string, limit, offset int) ([]*models.AuthoredComment, int, error) {
	posts := `
		SELECT a.external_id AS article_id, a.title AS article_title, '' AS parent_id, c.value AS post
		FROM articles a, jsonb_array_elements(a.comments) c
		WHERE c.value->>'author_id' = $1
		UNION ALL
		SELECT a.external_id, a.title, c.value->>'id', rp.value
		FROM articles a, jsonb_array_elements(a.comments) c, jsonb_array_elements(` + repliesOf + `) rp
		WHERE rp.value->>'author_id' = $1
	`

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM (`+posts+`) p`, authorID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT article_id, article_title, parent_id, post FROM (` + posts + `) p
		ORDER BY (post->>'created_at')::timestamptz DESC, post->>'id'
		LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryContext(ctx, query, authorID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []*models.AuthoredComment
	for rows.Next() {
		var item models.AuthoredComment
		var raw []byte
		if err := rows.Scan(&item.ArticleID, &item.ArticleTitle, &item.ParentID, &raw); err != nil {
			return nil, 0, err
		}
		if err := json.Unmarshal(raw, &item.Post); err != nil {
			return nil, 0, fmt.Errorf("failed to decode post: %w", err)
		}
		result = append(result, &item)
	}
	return result, total, rows.Err()
}

// ArticleIDsWithAuthor lists the articles holding any comment or reply by authorID
func (r *articleRepo) ArticleIDsWithAuthor(ctx context.Context, authorID string) ([]string, error) {
	query := `
		SELECT a.external_id FROM articles a
		WHERE EXISTS (
			SELECT 1 FROM jsonb_array_elements(a.comments) c
			WHERE c.value->>'author_id' = $1
			   OR EXISTS (
				SELECT 1 FROM jsonb_array_elements(` + repliesOf + `) rp
				WHERE rp.value->>'author_id' = $1
			   )
		)
		ORDER BY a.external_id
	`
	rows, err := r.db.QueryContext(ctx, query, authorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
