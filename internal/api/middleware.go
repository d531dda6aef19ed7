package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/news-interactions-api/internal/apperr"
	"github.com/news-interactions-api/internal/auth"
	"github.com/news-interactions-api/internal/models"
	"github.com/rs/zerolog"
)

const identityKey = "identity"

// authMiddleware resolves the bearer token and stores the identity on the context
func authMiddleware(resolver auth.Resolver, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		identity, err := resolver.Resolve(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			respondError(c, log, err)
			c.Abort()
			return
		}

		c.Set(identityKey, *identity)
		c.Next()
	}
}

// requireAdmin rejects non-admin identities. Must run after authMiddleware.
func requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := identityFrom(c)
		if !ok || !identity.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin role required"})
			return
		}
		c.Next()
	}
}

func identityFrom(c *gin.Context) (models.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return models.Identity{}, false
	}
	identity, ok := v.(models.Identity)
	return identity, ok
}

// mustIdentity returns the identity set by authMiddleware
func mustIdentity(c *gin.Context) models.Identity {
	identity, _ := identityFrom(c)
	return identity
}

// statusFor maps an error kind to its HTTP status
func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindUnauthenticated:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as a JSON error body. Internal causes are logged, never returned.
func respondError(c *gin.Context, log zerolog.Logger, err error) {
	status := statusFor(apperr.KindOf(err))
	if status == http.StatusInternalServerError {
		log.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("Request failed")
	}
	c.JSON(status, gin.H{"error": apperr.Message(err)})
}

// bindPage reads page, page_size and order from the query string
func bindPage(c *gin.Context) (models.PageRequest, bool) {
	var req models.PageRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "page and page_size must be integers"})
		return req, false
	}
	if req.Order != "" && req.Order != "asc" && req.Order != "desc" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "order must be one of: asc, desc"})
		return req, false
	}
	return req, true
}
