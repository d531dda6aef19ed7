package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/news-interactions-api/internal/auth"
	"github.com/news-interactions-api/internal/config"
	"github.com/news-interactions-api/internal/metrics"
	"github.com/news-interactions-api/internal/service"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// ServiceName is reported by the health endpoint
const ServiceName = "news-interactions-api"

// NewRouter creates and configures the Gin router
func NewRouter(services *service.Services, resolver auth.Resolver, cfg *config.Config, log zerolog.Logger) *gin.Engine {
	// Set Gin mode
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Middleware
	router.Use(recoveryMiddleware(log))
	router.Use(loggingMiddleware(log))
	router.Use(metricsMiddleware())
	router.Use(corsMiddleware())

	// Handlers
	articleHandler := NewArticleHandler(services, log)
	commentHandler := NewCommentHandler(services, log)
	engagementHandler := NewEngagementHandler(services, log)
	adminHandler := NewAdminHandler(services, log)

	authenticated := authMiddleware(resolver, log)
	adminOnly := requireAdmin()

	// Health check
	router.GET("/health", healthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1
	v1 := router.Group("/v1")
	{
		articles := v1.Group("/articles/:article_id")
		{
			articles.GET("", articleHandler.GetArticle)
			articles.PUT("", authenticated, adminOnly, articleHandler.UpsertArticle)

			articles.GET("/comments", commentHandler.ListComments)
			articles.POST("/comments", authenticated, commentHandler.CreateComment)
			articles.DELETE("/comments/:comment_id", authenticated, commentHandler.DeleteComment)
			articles.POST("/comments/:comment_id/votes", authenticated, commentHandler.VoteComment)

			articles.GET("/comments/:comment_id/replies", commentHandler.ListReplies)
			articles.POST("/comments/:comment_id/replies", authenticated, commentHandler.CreateReply)
			articles.DELETE("/comments/:comment_id/replies/:reply_id", authenticated, commentHandler.DeleteReply)
			articles.POST("/comments/:comment_id/replies/:reply_id/votes", authenticated, commentHandler.VoteReply)

			articles.GET("/likes", engagementHandler.GetLikeCount)
			articles.POST("/like", authenticated, engagementHandler.ToggleLike)
			articles.POST("/bookmark", authenticated, engagementHandler.ToggleBookmark)
			articles.GET("/interaction", authenticated, engagementHandler.GetStatus)
		}

		me := v1.Group("/me", authenticated)
		{
			me.GET("/comments", commentHandler.ListMyComments)
			me.GET("/bookmarks", engagementHandler.ListBookmarks)
		}

		admin := v1.Group("/admin", authenticated, adminOnly)
		{
			admin.GET("/activity", adminHandler.ListActivity)
			admin.GET("/activity/summary", adminHandler.ActivitySummary)

			admin.PUT("/users/:user_id", adminHandler.ProvisionUser)
			admin.POST("/users/:user_id/suspend", adminHandler.SuspendUser)
			admin.POST("/users/:user_id/unsuspend", adminHandler.UnsuspendUser)
			admin.POST("/users/:user_id/soft-delete", adminHandler.SoftDeleteUser)
			admin.DELETE("/users/:user_id", adminHandler.PermanentlyDeleteUser)
		}
	}

	return router
}

// healthCheck returns the health status
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"service":   ServiceName,
	})
}

// recoveryMiddleware handles panics
func recoveryMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().Interface("error", err).Str("path", c.Request.URL.Path).Msg("Panic recovered")
				c.JSON(http.StatusInternalServerError, gin.H{
					"error": "Internal server error",
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}

// loggingMiddleware logs requests
func loggingMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		event := log.Info()
		if statusCode >= 400 {
			event = log.Warn()
		}
		if statusCode >= 500 {
			event = log.Error()
		}

		if identity, ok := identityFrom(c); ok {
			event = event.Str("user_id", identity.UserID)
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", statusCode).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Msg("Request completed")
	}
}

// metricsMiddleware counts requests per route template so ids do not explode label cardinality
func metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// corsMiddleware handles CORS
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
