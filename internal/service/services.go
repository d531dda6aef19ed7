package service

import (
	"context"
	"time"

	"github.com/news-interactions-api/internal/config"
	"github.com/news-interactions-api/internal/models"
	"github.com/news-interactions-api/internal/moderation"
	"github.com/news-interactions-api/internal/repository"
	"github.com/news-interactions-api/internal/validation"
	"github.com/news-interactions-api/internal/vote"
	"github.com/rs/zerolog"
)

// ActivityRecorder receives a copy of every successful mutation. It must not
// fail or block the caller.
type ActivityRecorder interface {
	Record(ctx context.Context, entry *models.Activity)
}

// CommentService defines comment and reply operations on an article
type CommentService interface {
	AddComment(ctx context.Context, actor models.Identity, articleID, text string) (*models.Comment, error)
	DeleteComment(ctx context.Context, actor models.Identity, articleID, commentID string) error
	AddReply(ctx context.Context, actor models.Identity, articleID, commentID, text string) (*models.Reply, error)
	DeleteReply(ctx context.Context, actor models.Identity, articleID, commentID, replyID string) error
	ListComments(ctx context.Context, articleID string, req models.PageRequest) (*models.Page[*models.CommentView], error)
	ListReplies(ctx context.Context, articleID, commentID string, req models.PageRequest) (*models.Page[*models.ReplyView], error)
	ListMyComments(ctx context.Context, actor models.Identity, req models.PageRequest) (*models.Page[*models.AuthoredView], error)
}

// VoteService defines up/down voting on comments and replies
type VoteService interface {
	Vote(ctx context.Context, actor models.Identity, target models.TargetRef, direction string) (*vote.Result, error)
}

// EngagementService defines like and bookmark operations
type EngagementService interface {
	ToggleLike(ctx context.Context, actor models.Identity, articleID string) (*models.LikeState, error)
	ToggleBookmark(ctx context.Context, actor models.Identity, articleID string) (*models.BookmarkState, error)
	LikeCount(ctx context.Context, articleID string) (int, error)
	Status(ctx context.Context, actor models.Identity, articleID string) (*models.InteractionStatus, error)
	ListBookmarks(ctx context.Context, actor models.Identity, req models.PageRequest) (*models.Page[*models.ArticleView], error)
}

// ArticleService defines the article supply and lookup
type ArticleService interface {
	Upsert(ctx context.Context, actor models.Identity, input *models.ArticleInput) (*models.ArticleView, error)
	Get(ctx context.Context, articleID string) (*models.ArticleView, error)
}

// ActivityService defines reads over the activity log
type ActivityService interface {
	List(ctx context.Context, filter models.ActivityFilter, req models.PageRequest) (*models.Page[*models.Activity], error)
	Summary(ctx context.Context, limit int) ([]models.ActionCount, error)
}

// AdminService defines account management
type AdminService interface {
	ProvisionUser(ctx context.Context, actor models.Identity, input *models.AccountInput) (*models.User, error)
	Suspend(ctx context.Context, actor models.Identity, userID string, until *time.Time, reason string) (*models.User, error)
	Unsuspend(ctx context.Context, actor models.Identity, userID string) (*models.User, error)
	SoftDelete(ctx context.Context, actor models.Identity, userID, reason string) (*models.User, error)
	PermanentDelete(ctx context.Context, actor models.Identity, userID string, confirm bool) (*models.DeletionReport, error)
}

// Services holds all service interfaces
type Services struct {
	Comment    CommentService
	Vote       VoteService
	Engagement EngagementService
	Article    ArticleService
	Activity   ActivityService
	Admin      AdminService
}

// NewServices creates all services
func NewServices(repos *repository.Repositories, recorder ActivityRecorder, filter *moderation.Filter, cfg *config.Config, log zerolog.Logger) *Services {
	validator := validation.NewValidator(cfg.Moderation.MaxWords)
	pages := newPager(cfg.Pagination)

	return &Services{
		Comment:    newCommentService(repos.Article, recorder, filter, validator, pages, log),
		Vote:       newVoteService(repos.Article, recorder, validator, log),
		Engagement: newEngagementService(repos, recorder, pages, log),
		Article:    newArticleService(repos.Article, validator, log),
		Activity:   newActivityService(repos.Activity, pages),
		Admin:      newAdminService(repos, recorder, validator, log),
	}
}
