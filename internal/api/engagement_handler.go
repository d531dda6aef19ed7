package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/news-interactions-api/internal/service"
	"github.com/rs/zerolog"
)

// EngagementHandler handles like and bookmark endpoints
type EngagementHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewEngagementHandler creates a new EngagementHandler
func NewEngagementHandler(services *service.Services, log zerolog.Logger) *EngagementHandler {
	return &EngagementHandler{
		services: services,
		log:      log.With().Str("handler", "engagement").Logger(),
	}
}

// ToggleLike handles POST /v1/articles/:article_id/like
func (h *EngagementHandler) ToggleLike(c *gin.Context) {
	state, err := h.services.Engagement.ToggleLike(c.Request.Context(), mustIdentity(c), c.Param("article_id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// GetLikeCount handles GET /v1/articles/:article_id/likes
func (h *EngagementHandler) GetLikeCount(c *gin.Context) {
	articleID := c.Param("article_id")
	count, err := h.services.Engagement.LikeCount(c.Request.Context(), articleID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"article_id": articleID,
		"like_count": count,
	})
}

// ToggleBookmark handles POST /v1/articles/:article_id/bookmark
func (h *EngagementHandler) ToggleBookmark(c *gin.Context) {
	state, err := h.services.Engagement.ToggleBookmark(c.Request.Context(), mustIdentity(c), c.Param("article_id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// GetStatus handles GET /v1/articles/:article_id/interaction
func (h *EngagementHandler) GetStatus(c *gin.Context) {
	status, err := h.services.Engagement.Status(c.Request.Context(), mustIdentity(c), c.Param("article_id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// ListBookmarks handles GET /v1/me/bookmarks
func (h *EngagementHandler) ListBookmarks(c *gin.Context) {
	req, ok := bindPage(c)
	if !ok {
		return
	}
	page, err := h.services.Engagement.ListBookmarks(c.Request.Context(), mustIdentity(c), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, page)
}
