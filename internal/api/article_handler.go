package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/news-interactions-api/internal/models"
	"github.com/news-interactions-api/internal/service"
	"github.com/rs/zerolog"
)

// ArticleHandler handles article endpoints
type ArticleHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewArticleHandler creates a new ArticleHandler
func NewArticleHandler(services *service.Services, log zerolog.Logger) *ArticleHandler {
	return &ArticleHandler{
		services: services,
		log:      log.With().Str("handler", "article").Logger(),
	}
}

// GetArticle handles GET /v1/articles/:article_id
func (h *ArticleHandler) GetArticle(c *gin.Context) {
	article, err := h.services.Article.Get(c.Request.Context(), c.Param("article_id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, article)
}

// UpsertArticle handles PUT /v1/articles/:article_id
// The path id wins over any article_id in the body.
func (h *ArticleHandler) UpsertArticle(c *gin.Context) {
	var input models.ArticleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}
	input.ArticleID = c.Param("article_id")

	article, err := h.services.Article.Upsert(c.Request.Context(), mustIdentity(c), &input)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, article)
}
