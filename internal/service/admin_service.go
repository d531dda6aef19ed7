package service

import (
	"context"
	"errors"
	"time"

	"github.com/news-interactions-api/internal/apperr"
	"github.com/news-interactions-api/internal/authz"
	"github.com/news-interactions-api/internal/models"
	"github.com/news-interactions-api/internal/repository"
	"github.com/news-interactions-api/internal/validation"
	"github.com/rs/zerolog"
)

// adminService is the concrete implementation of AdminService
type adminService struct {
	users     repository.UserRepository
	articles  repository.ArticleRepository
	recorder  ActivityRecorder
	validator *validation.Validator
	log       zerolog.Logger
}

// newAdminService creates a new AdminService
func newAdminService(repos *repository.Repositories, recorder ActivityRecorder, validator *validation.Validator, log zerolog.Logger) *adminService {
	return &adminService{
		users:     repos.User,
		articles:  repos.Article,
		recorder:  recorder,
		validator: validator,
		log:       log.With().Str("service", "admin").Logger(),
	}
}

// check runs the authorization guard for an action on userID's account
func (s *adminService) check(action authz.Action, actor models.Identity, userID string) error {
	if err := authz.Check(action, actor.UserID, actor.Role, userID); err != nil {
		s.log.Warn().
			Str("action", string(action)).
			Str("admin_id", actor.UserID).
			Str("target_user_id", userID).
			Msg("Admin action refused")
		return err
	}
	return nil
}

// guard runs the authorization check, then validates and loads the target account
func (s *adminService) guard(ctx context.Context, action authz.Action, actor models.Identity, userID string) (*models.User, error) {
	if err := s.check(action, actor, userID); err != nil {
		return nil, err
	}
	return s.loadTarget(ctx, userID)
}

func (s *adminService) loadTarget(ctx context.Context, userID string) (*models.User, error) {
	if !validation.IsValidUUID(userID) {
		return nil, apperr.Validation("invalid user id")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load user")
	}
	if user == nil {
		return nil, apperr.NotFound("user %s not found", userID)
	}
	return user, nil
}

func (s *adminService) record(ctx context.Context, actor models.Identity, action models.Action, user *models.User, meta map[string]any) {
	if meta == nil {
		meta = map[string]any{}
	}
	meta["target_username"] = user.Username
	s.recorder.Record(ctx, &models.Activity{
		ActorID:   actor.UserID,
		ActorName: actor.Username,
		Action:    action,
		TargetID:  user.ID,
		Meta:      meta,
	})
}

// ProvisionUser creates or refreshes an account delivered by the identity provider
func (s *adminService) ProvisionUser(ctx context.Context, actor models.Identity, input *models.AccountInput) (*models.User, error) {
	if err := authz.Check(authz.ProvisionUser, actor.UserID, actor.Role, ""); err != nil {
		return nil, err
	}
	if err := validation.ToError(s.validator.ValidateAccount(input.UserID, input.Username, input.Role)); err != nil {
		return nil, err
	}

	user := &models.User{ID: input.UserID, Username: input.Username, Role: input.Role}
	created, err := s.users.Upsert(ctx, user)
	if errors.Is(err, repository.ErrUsernameTaken) {
		return nil, apperr.Conflict("username %s is already taken", input.Username)
	}
	if err != nil {
		return nil, apperr.Internal(err, "failed to store user")
	}

	if created {
		s.log.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("User registered")
		s.recorder.Record(ctx, &models.Activity{
			ActorID:   user.ID,
			ActorName: user.Username,
			Action:    models.ActionRegister,
			Meta:      map[string]any{"provisioned_by": actor.UserID},
		})
	}
	return user, nil
}

// Suspend blocks an account until the given time, or indefinitely when until is nil
func (s *adminService) Suspend(ctx context.Context, actor models.Identity, userID string, until *time.Time, reason string) (*models.User, error) {
	user, err := s.guard(ctx, authz.SuspendUser, actor, userID)
	if err != nil {
		return nil, observe("admin.suspend", err)
	}
	if err := validation.ToError(s.validator.ValidateSuspension(until, time.Now())); err != nil {
		return nil, observe("admin.suspend", err)
	}
	if user.Status == models.UserStatusDeleted {
		return nil, observe("admin.suspend", apperr.Conflict("user %s is deleted", userID))
	}

	user.Status = models.UserStatusSuspended
	user.SuspendedUntil = nil
	if until != nil {
		t := until.UTC()
		user.SuspendedUntil = &t
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, observe("admin.suspend", apperr.Internal(err, "failed to update user"))
	}
	observe("admin.suspend", nil)

	s.log.Info().Str("admin_id", actor.UserID).Str("target_user_id", userID).Msg("User suspended")
	s.record(ctx, actor, models.ActionAdminSuspend, user, map[string]any{
		"reason": reason,
		"until":  user.SuspendedUntil,
	})
	return user, nil
}

// Unsuspend restores a suspended account
func (s *adminService) Unsuspend(ctx context.Context, actor models.Identity, userID string) (*models.User, error) {
	user, err := s.guard(ctx, authz.UnsuspendUser, actor, userID)
	if err != nil {
		return nil, observe("admin.unsuspend", err)
	}
	if user.Status == models.UserStatusDeleted {
		return nil, observe("admin.unsuspend", apperr.Conflict("user %s is deleted", userID))
	}

	user.Status = models.UserStatusActive
	user.SuspendedUntil = nil
	if err := s.users.Update(ctx, user); err != nil {
		return nil, observe("admin.unsuspend", apperr.Internal(err, "failed to update user"))
	}
	observe("admin.unsuspend", nil)

	s.log.Info().Str("admin_id", actor.UserID).Str("target_user_id", userID).Msg("User unsuspended")
	s.record(ctx, actor, models.ActionAdminUnsuspend, user, nil)
	return user, nil
}

// SoftDelete marks an account deleted while keeping its content attributed
func (s *adminService) SoftDelete(ctx context.Context, actor models.Identity, userID, reason string) (*models.User, error) {
	user, err := s.guard(ctx, authz.SoftDeleteUser, actor, userID)
	if err != nil {
		return nil, observe("admin.softDelete", err)
	}

	deletedAt := utcNow()
	user.Status = models.UserStatusDeleted
	user.DeletedAt = &deletedAt
	user.SuspendedUntil = nil
	if err := s.users.Update(ctx, user); err != nil {
		return nil, observe("admin.softDelete", apperr.Internal(err, "failed to update user"))
	}
	observe("admin.softDelete", nil)

	s.log.Info().Str("admin_id", actor.UserID).Str("target_user_id", userID).Msg("User soft deleted")
	s.record(ctx, actor, models.ActionAdminSoftDelete, user, map[string]any{"reason": reason})
	return user, nil
}

// PermanentDelete anonymizes every comment and reply by the account, then
// removes the account. Requires explicit confirmation.
func (s *adminService) PermanentDelete(ctx context.Context, actor models.Identity, userID string, confirm bool) (*models.DeletionReport, error) {
	if err := s.check(authz.PermanentlyDelete, actor, userID); err != nil {
		return nil, observe("admin.permanentDelete", err)
	}
	if !confirm {
		return nil, observe("admin.permanentDelete", apperr.Validation("permanent deletion requires confirm=true"))
	}
	user, err := s.loadTarget(ctx, userID)
	if err != nil {
		return nil, observe("admin.permanentDelete", err)
	}

	articleIDs, err := s.articles.ArticleIDsWithAuthor(ctx, userID)
	if err != nil {
		return nil, observe("admin.permanentDelete", apperr.Internal(err, "failed to find authored content"))
	}

	report := &models.DeletionReport{UserID: user.ID, Username: user.Username}
	for _, articleID := range articleIDs {
		var anonymized int
		err := s.articles.Update(ctx, articleID, func(a *models.Article) error {
			anonymized = anonymizeAuthor(a, userID)
			return nil
		})
		if errors.Is(err, repository.ErrArticleNotFound) {
			continue
		}
		if err != nil {
			return nil, observe("admin.permanentDelete", apperr.Internal(err, "failed to anonymize content"))
		}
		report.ArticlesTouched++
		report.PostsAnonymized += anonymized
	}

	if _, err := s.users.Delete(ctx, userID); err != nil {
		return nil, observe("admin.permanentDelete", apperr.Internal(err, "failed to delete user"))
	}
	observe("admin.permanentDelete", nil)

	s.log.Info().
		Str("admin_id", actor.UserID).
		Str("target_user_id", userID).
		Int("articles", report.ArticlesTouched).
		Int("posts", report.PostsAnonymized).
		Msg("User permanently deleted")

	s.record(ctx, actor, models.ActionAdminPermDelete, user, map[string]any{
		"posts_anonymized": report.PostsAnonymized,
	})
	return report, nil
}

// anonymizeAuthor detaches every post by authorID in a and returns how many changed
func anonymizeAuthor(a *models.Article, authorID string) int {
	n := 0
	for _, c := range a.Comments {
		if c.AuthorID == authorID {
			c.Anonymize()
			n++
		}
		for _, r := range c.Replies {
			if r.AuthorID == authorID {
				r.Anonymize()
				n++
			}
		}
	}
	return n
}
