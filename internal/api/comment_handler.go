package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/news-interactions-api/internal/models"
	"github.com/news-interactions-api/internal/service"
	"github.com/rs/zerolog"
)

// CommentHandler handles comment, reply and vote endpoints
type CommentHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(services *service.Services, log zerolog.Logger) *CommentHandler {
	return &CommentHandler{
		services: services,
		log:      log.With().Str("handler", "comment").Logger(),
	}
}

type textRequest struct {
	Text string `json:"text"`
}

type voteRequest struct {
	Direction string `json:"direction"`
}

// ListComments handles GET /v1/articles/:article_id/comments
func (h *CommentHandler) ListComments(c *gin.Context) {
	req, ok := bindPage(c)
	if !ok {
		return
	}
	page, err := h.services.Comment.ListComments(c.Request.Context(), c.Param("article_id"), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// CreateComment handles POST /v1/articles/:article_id/comments
func (h *CommentHandler) CreateComment(c *gin.Context) {
	var body textRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}

	comment, err := h.services.Comment.AddComment(c.Request.Context(), mustIdentity(c), c.Param("article_id"), body.Text)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, comment.View())
}

// DeleteComment handles DELETE /v1/articles/:article_id/comments/:comment_id
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	err := h.services.Comment.DeleteComment(c.Request.Context(), mustIdentity(c), c.Param("article_id"), c.Param("comment_id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListReplies handles GET /v1/articles/:article_id/comments/:comment_id/replies
func (h *CommentHandler) ListReplies(c *gin.Context) {
	req, ok := bindPage(c)
	if !ok {
		return
	}
	page, err := h.services.Comment.ListReplies(c.Request.Context(), c.Param("article_id"), c.Param("comment_id"), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// CreateReply handles POST /v1/articles/:article_id/comments/:comment_id/replies
func (h *CommentHandler) CreateReply(c *gin.Context) {
	var body textRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}

	reply, err := h.services.Comment.AddReply(c.Request.Context(), mustIdentity(c),
		c.Param("article_id"), c.Param("comment_id"), body.Text)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, reply.View())
}

// DeleteReply handles DELETE /v1/articles/:article_id/comments/:comment_id/replies/:reply_id
func (h *CommentHandler) DeleteReply(c *gin.Context) {
	err := h.services.Comment.DeleteReply(c.Request.Context(), mustIdentity(c),
		c.Param("article_id"), c.Param("comment_id"), c.Param("reply_id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// VoteComment handles POST /v1/articles/:article_id/comments/:comment_id/votes
func (h *CommentHandler) VoteComment(c *gin.Context) {
	h.vote(c, models.TargetRef{ArticleID: c.Param("article_id"), CommentID: c.Param("comment_id")})
}

// VoteReply handles POST /v1/articles/:article_id/comments/:comment_id/replies/:reply_id/votes
func (h *CommentHandler) VoteReply(c *gin.Context) {
	h.vote(c, models.TargetRef{
		ArticleID: c.Param("article_id"),
		CommentID: c.Param("comment_id"),
		ReplyID:   c.Param("reply_id"),
	})
}

func (h *CommentHandler) vote(c *gin.Context, target models.TargetRef) {
	var body voteRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}

	result, err := h.services.Vote.Vote(c.Request.Context(), mustIdentity(c), target, body.Direction)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListMyComments handles GET /v1/me/comments
func (h *CommentHandler) ListMyComments(c *gin.Context) {
	req, ok := bindPage(c)
	if !ok {
		return
	}
	page, err := h.services.Comment.ListMyComments(c.Request.Context(), mustIdentity(c), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, page)
}
