package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/news-interactions-api/internal/database"
	"github.com/news-interactions-api/internal/models"
)

// userRepo is the concrete implementation of UserRepository
type userRepo struct {
	db *database.DB
}

// NewUserRepo creates a new user repository
func NewUserRepo(db *database.DB) UserRepository {
	return &userRepo{db: db}
}

// Upsert inserts a user or refreshes username and role. Reports whether the
// account was newly created. Lifecycle status is left alone on refresh.
func (r *userRepo) Upsert(ctx context.Context, user *models.User) (bool, error) {
	query := `
		INSERT INTO users (id, username, role, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (id) DO UPDATE SET
			username = EXCLUDED.username,
			role = EXCLUDED.role,
			updated_at = EXCLUDED.updated_at
		RETURNING status, created_at, updated_at, (xmax = 0) AS inserted
	`
	status := user.Status
	if status == "" {
		status = models.UserStatusActive
	}

	var inserted bool
	err := r.db.QueryRowContext(ctx, query,
		user.ID, user.Username, user.Role, status, time.Now().UTC(),
	).Scan(&user.Status, &user.CreatedAt, &user.UpdatedAt, &inserted)
	if isUniqueViolation(err) {
		return false, ErrUsernameTaken
	}
	return inserted, err
}

// GetByID retrieves a user by ID
func (r *userRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `
		SELECT id, username, role, status, suspended_until, deleted_at, created_at, updated_at
		FROM users WHERE id = $1
	`
	var user models.User
	var suspendedUntil, deletedAt sql.NullTime
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID, &user.Username, &user.Role, &user.Status,
		&suspendedUntil, &deletedAt, &user.CreatedAt, &user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if suspendedUntil.Valid {
		user.SuspendedUntil = &suspendedUntil.Time
	}
	if deletedAt.Valid {
		user.DeletedAt = &deletedAt.Time
	}
	return &user, nil
}

// Update persists lifecycle changes
func (r *userRepo) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users SET status = $1, suspended_until = $2, deleted_at = $3, updated_at = $4
		WHERE id = $5
	`
	user.UpdatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx, query,
		user.Status, user.SuspendedUntil, user.DeletedAt, user.UpdatedAt, user.ID,
	)
	return err
}

// Delete removes a user row. Reports false if no row existed.
func (r *userRepo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
