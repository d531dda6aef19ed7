package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/news-interactions-api/internal/apperr"
	"github.com/news-interactions-api/internal/authz"
	"github.com/news-interactions-api/internal/metrics"
	"github.com/news-interactions-api/internal/models"
	"github.com/news-interactions-api/internal/moderation"
	"github.com/news-interactions-api/internal/repository"
	"github.com/news-interactions-api/internal/validation"
	"github.com/news-interactions-api/internal/vote"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

// commentService is the concrete implementation of CommentService
type commentService struct {
	articles  repository.ArticleRepository
	recorder  ActivityRecorder
	filter    *moderation.Filter
	validator *validation.Validator
	pages     pager
	log       zerolog.Logger
}

// newCommentService creates a new CommentService
func newCommentService(articles repository.ArticleRepository, recorder ActivityRecorder, filter *moderation.Filter,
	validator *validation.Validator, pages pager, log zerolog.Logger) *commentService {
	return &commentService{
		articles:  articles,
		recorder:  recorder,
		filter:    filter,
		validator: validator,
		pages:     pages,
		log:       log.With().Str("service", "comment").Logger(),
	}
}

// newPost validates and moderates text and stamps a fresh post for actor
func (s *commentService) newPost(actor models.Identity, text string) (models.Post, error) {
	if err := validation.ToError(s.validator.ValidateCommentText(text)); err != nil {
		return models.Post{}, err
	}

	res := s.filter.Moderate(text)
	if res.Flagged {
		metrics.ModeratedPosts.WithLabelValues(string(res.Visibility)).Inc()
	}

	return models.Post{
		ID:           uuid.New().String(),
		AuthorID:     actor.UserID,
		AuthorName:   actor.Username,
		Text:         res.DisplayText,
		OriginalText: res.OriginalText,
		Flagged:      res.Flagged,
		MatchedTerms: res.MatchedTerms,
		Visibility:   res.Visibility,
		CreatedAt:    utcNow(),
		Votes:        vote.NewSet(),
	}, nil
}

// AddComment moderates text and appends a new comment to the article
func (s *commentService) AddComment(ctx context.Context, actor models.Identity, articleID, text string) (*models.Comment, error) {
	post, err := s.newPost(actor, text)
	if err != nil {
		return nil, observe("comment.create", err)
	}
	comment := &models.Comment{Post: post, Replies: []*models.Reply{}}

	err = s.articles.Update(ctx, articleID, func(a *models.Article) error {
		a.AppendComment(comment)
		return nil
	})
	if err != nil {
		return nil, observe("comment.create", storeError(err, articleID))
	}
	observe("comment.create", nil)

	s.log.Info().
		Str("article_id", articleID).
		Str("comment_id", comment.ID).
		Str("author_id", actor.UserID).
		Bool("flagged", comment.Flagged).
		Msg("Comment added")

	s.recorder.Record(ctx, &models.Activity{
		ActorID:   actor.UserID,
		ActorName: actor.Username,
		Action:    models.ActionCommentCreate,
		ArticleID: articleID,
		TargetID:  comment.ID,
		Meta: map[string]any{
			"flagged":    comment.Flagged,
			"visibility": comment.Visibility,
		},
	})

	return comment, nil
}

// DeleteComment removes a comment and its replies. Only the author or an admin may delete.
func (s *commentService) DeleteComment(ctx context.Context, actor models.Identity, articleID, commentID string) error {
	var ownerID string
	var replyCount int

	err := s.articles.Update(ctx, articleID, func(a *models.Article) error {
		c := a.FindComment(commentID)
		if c == nil {
			return apperr.NotFound("comment %s not found", commentID)
		}
		if err := authz.Check(authz.DeleteComment, actor.UserID, actor.Role, c.AuthorID); err != nil {
			return err
		}
		ownerID, replyCount = c.AuthorID, len(c.Replies)
		a.RemoveComment(commentID)
		return nil
	})
	if err != nil {
		return observe("comment.delete", storeError(err, articleID))
	}
	observe("comment.delete", nil)

	s.log.Info().
		Str("article_id", articleID).
		Str("comment_id", commentID).
		Str("actor_id", actor.UserID).
		Int("replies_removed", replyCount).
		Msg("Comment deleted")

	s.recorder.Record(ctx, &models.Activity{
		ActorID:   actor.UserID,
		ActorName: actor.Username,
		Action:    models.ActionCommentDelete,
		ArticleID: articleID,
		TargetID:  commentID,
		Meta: map[string]any{
			"replies_removed": replyCount,
			"moderated":       ownerID != actor.UserID,
		},
	})
	return nil
}

// AddReply moderates text and appends a reply under a comment
func (s *commentService) AddReply(ctx context.Context, actor models.Identity, articleID, commentID, text string) (*models.Reply, error) {
	post, err := s.newPost(actor, text)
	if err != nil {
		return nil, observe("reply.create", err)
	}
	reply := &models.Reply{Post: post}

	err = s.articles.Update(ctx, articleID, func(a *models.Article) error {
		c := a.FindComment(commentID)
		if c == nil {
			return apperr.NotFound("comment %s not found", commentID)
		}
		c.AppendReply(reply)
		return nil
	})
	if err != nil {
		return nil, observe("reply.create", storeError(err, articleID))
	}
	observe("reply.create", nil)

	s.log.Info().
		Str("article_id", articleID).
		Str("comment_id", commentID).
		Str("reply_id", reply.ID).
		Bool("flagged", reply.Flagged).
		Msg("Reply added")

	s.recorder.Record(ctx, &models.Activity{
		ActorID:   actor.UserID,
		ActorName: actor.Username,
		Action:    models.ActionReplyCreate,
		ArticleID: articleID,
		TargetID:  reply.ID,
		Meta: map[string]any{
			"parent_id":  commentID,
			"flagged":    reply.Flagged,
			"visibility": reply.Visibility,
		},
	})

	return reply, nil
}

// DeleteReply removes a reply. Only the author or an admin may delete.
func (s *commentService) DeleteReply(ctx context.Context, actor models.Identity, articleID, commentID, replyID string) error {
	var ownerID string

	err := s.articles.Update(ctx, articleID, func(a *models.Article) error {
		c := a.FindComment(commentID)
		if c == nil {
			return apperr.NotFound("comment %s not found", commentID)
		}
		r := c.FindReply(replyID)
		if r == nil {
			return apperr.NotFound("reply %s not found", replyID)
		}
		if err := authz.Check(authz.DeleteReply, actor.UserID, actor.Role, r.AuthorID); err != nil {
			return err
		}
		ownerID = r.AuthorID
		c.RemoveReply(replyID)
		return nil
	})
	if err != nil {
		return observe("reply.delete", storeError(err, articleID))
	}
	observe("reply.delete", nil)

	s.log.Info().
		Str("article_id", articleID).
		Str("comment_id", commentID).
		Str("reply_id", replyID).
		Str("actor_id", actor.UserID).
		Msg("Reply deleted")

	s.recorder.Record(ctx, &models.Activity{
		ActorID:   actor.UserID,
		ActorName: actor.Username,
		Action:    models.ActionReplyDelete,
		ArticleID: articleID,
		TargetID:  replyID,
		Meta: map[string]any{
			"parent_id": commentID,
			"moderated": ownerID != actor.UserID,
		},
	})
	return nil
}

func (s *commentService) loadArticle(ctx context.Context, articleID string) (*models.Article, error) {
	article, err := s.articles.GetByExternalID(ctx, articleID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load article")
	}
	if article == nil {
		return nil, apperr.NotFound("article %s not found", articleID)
	}
	return article, nil
}

// ListComments returns one page of an article's comments, oldest first by default
func (s *commentService) ListComments(ctx context.Context, articleID string, req models.PageRequest) (*models.Page[*models.CommentView], error) {
	req, err := s.pages.normalize(req)
	if err != nil {
		return nil, err
	}
	article, err := s.loadArticle(ctx, articleID)
	if err != nil {
		return nil, err
	}

	views := lo.Map(article.Comments, func(c *models.Comment, _ int) *models.CommentView { return c.View() })
	return paginate(views, func(v *models.CommentView) time.Time { return v.CreatedAt }, req), nil
}

// ListReplies returns one page of a comment's replies, oldest first by default
func (s *commentService) ListReplies(ctx context.Context, articleID, commentID string, req models.PageRequest) (*models.Page[*models.ReplyView], error) {
	req, err := s.pages.normalize(req)
	if err != nil {
		return nil, err
	}
	article, err := s.loadArticle(ctx, articleID)
	if err != nil {
		return nil, err
	}
	c := article.FindComment(commentID)
	if c == nil {
		return nil, apperr.NotFound("comment %s not found", commentID)
	}

	views := lo.Map(c.Replies, func(r *models.Reply, _ int) *models.ReplyView { return r.View() })
	return paginate(views, func(v *models.ReplyView) time.Time { return v.CreatedAt }, req), nil
}

// ListMyComments returns the actor's comments and replies across articles, newest first
func (s *commentService) ListMyComments(ctx context.Context, actor models.Identity, req models.PageRequest) (*models.Page[*models.AuthoredView], error) {
	req, err := s.pages.normalize(req)
	if err != nil {
		return nil, err
	}
	req.Order = "desc"

	items, total, err := s.articles.ListCommentsByAuthor(ctx, actor.UserID, req.PageSize, req.Offset())
	if err != nil {
		return nil, apperr.Internal(err, "failed to list comments")
	}
	views := lo.Map(items, func(a *models.AuthoredComment, _ int) *models.AuthoredView { return a.View() })
	return models.NewPage(views, total, req), nil
}
