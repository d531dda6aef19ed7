package service

import (
	"context"

	"github.com/news-interactions-api/internal/apperr"
	"github.com/news-interactions-api/internal/models"
	"github.com/news-interactions-api/internal/repository"
	"github.com/news-interactions-api/internal/validation"
	"github.com/news-interactions-api/internal/vote"
	"github.com/rs/zerolog"
)

// voteService is the concrete implementation of VoteService
type voteService struct {
	articles  repository.ArticleRepository
	recorder  ActivityRecorder
	validator *validation.Validator
	log       zerolog.Logger
}

// newVoteService creates a new VoteService
func newVoteService(articles repository.ArticleRepository, recorder ActivityRecorder, validator *validation.Validator, log zerolog.Logger) *voteService {
	return &voteService{
		articles:  articles,
		recorder:  recorder,
		validator: validator,
		log:       log.With().Str("service", "vote").Logger(),
	}
}

// Vote toggles the actor's vote on a comment or reply inside the article's
// atomic update, so concurrent votes from different users are all kept.
func (s *voteService) Vote(ctx context.Context, actor models.Identity, target models.TargetRef, direction string) (*vote.Result, error) {
	action := models.ActionCommentVote
	targetID := target.CommentID
	if target.IsReply() {
		action = models.ActionReplyVote
		targetID = target.ReplyID
	}

	dir, errs := s.validator.ValidateDirection(direction)
	if err := validation.ToError(errs); err != nil {
		return nil, observe(string(action), err)
	}

	var result vote.Result
	err := s.articles.Update(ctx, target.ArticleID, func(a *models.Article) error {
		c := a.FindComment(target.CommentID)
		if c == nil {
			return apperr.NotFound("comment %s not found", target.CommentID)
		}
		post := &c.Post
		if target.IsReply() {
			r := c.FindReply(target.ReplyID)
			if r == nil {
				return apperr.NotFound("reply %s not found", target.ReplyID)
			}
			post = &r.Post
		}
		result = post.Votes.Toggle(actor.UserID, dir)
		return nil
	})
	if err != nil {
		return nil, observe(string(action), storeError(err, target.ArticleID))
	}
	observe(string(action), nil)

	s.log.Debug().
		Str("article_id", target.ArticleID).
		Str("target_id", targetID).
		Str("user_id", actor.UserID).
		Str("direction", string(dir)).
		Int("score", result.Score).
		Msg("Vote applied")

	meta := map[string]any{
		"direction":  dir,
		"user_state": result.UserState,
		"score":      result.Score,
	}
	if target.IsReply() {
		meta["parent_id"] = target.CommentID
	}
	s.recorder.Record(ctx, &models.Activity{
		ActorID:   actor.UserID,
		ActorName: actor.Username,
		Action:    action,
		ArticleID: target.ArticleID,
		TargetID:  targetID,
		Meta:      meta,
	})

	return &result, nil
}
