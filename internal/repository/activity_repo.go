package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/news-interactions-api/internal/database"
	"github.com/news-interactions-api/internal/models"
)

// activityRepo is the concrete implementation of ActivityRepository
type activityRepo struct {
	db *database.DB
}

// NewActivityRepo creates a new activity repository
func NewActivityRepo(db *database.DB) ActivityRepository {
	return &activityRepo{db: db}
}

// Create appends an activity entry
func (r *activityRepo) Create(ctx context.Context, activity *models.Activity) error {
	meta := activity.Meta
	if meta == nil {
		meta = map[string]any{}
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to encode activity meta: %w", err)
	}

	query := `
		INSERT INTO activities (id, actor_id, actor_name, action, article_id, target_id, meta, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = r.db.ExecContext(ctx, query,
		activity.ID, activity.ActorID, activity.ActorName, activity.Action,
		nullString(activity.ArticleID), nullString(activity.TargetID), metaJSON, activity.CreatedAt,
	)
	return err
}

// List returns matching entries, newest first, with the total match count
func (r *activityRepo) List(ctx context.Context, filter models.ActivityFilter, limit, offset int) ([]*models.Activity, int, error) {
	var conds []string
	var args []any
	if filter.ActorID != "" {
		args = append(args, filter.ActorID)
		conds = append(conds, fmt.Sprintf("actor_id = $%d", len(args)))
	}
	if filter.Action != "" {
		args = append(args, string(filter.Action))
		conds = append(conds, fmt.Sprintf("action = $%d", len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM activities"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT id, actor_id, actor_name, action, article_id, target_id, meta, created_at
		FROM activities%s
		ORDER BY created_at DESC, id
		LIMIT $%d OFFSET $%d`, where, len(args)+1, len(args)+2)

	rows, err := r.db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var activities []*models.Activity
	for rows.Next() {
		var a models.Activity
		var articleID, targetID sql.NullString
		var meta []byte
		if err := rows.Scan(&a.ID, &a.ActorID, &a.ActorName, &a.Action, &articleID, &targetID, &meta, &a.CreatedAt); err != nil {
			return nil, 0, err
		}
		a.ArticleID = articleID.String
		a.TargetID = targetID.String
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &a.Meta); err != nil {
				return nil, 0, fmt.Errorf("failed to decode activity meta: %w", err)
			}
		}
		activities = append(activities, &a)
	}
	return activities, total, rows.Err()
}

// Summary returns the most frequent actions, highest count first
func (r *activityRepo) Summary(ctx context.Context, limit int) ([]models.ActionCount, error) {
	query := `
		SELECT action, COUNT(*) AS total FROM activities
		GROUP BY action
		ORDER BY total DESC, action
		LIMIT $1
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []models.ActionCount
	for rows.Next() {
		var c models.ActionCount
		if err := rows.Scan(&c.Action, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}
