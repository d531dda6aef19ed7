package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/news-interactions-api/internal/models"
	"github.com/news-interactions-api/internal/service"
	"github.com/rs/zerolog"
)

// AdminHandler handles account management and activity endpoints
type AdminHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(services *service.Services, log zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		services: services,
		log:      log.With().Str("handler", "admin").Logger(),
	}
}

type suspendRequest struct {
	Until  *time.Time `json:"until"`
	Reason string     `json:"reason"`
}

type reasonRequest struct {
	Reason string `json:"reason"`
}

// bindOptionalJSON binds a JSON body when one was sent. An empty body leaves obj untouched.
func bindOptionalJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return false
	}
	return true
}

// ProvisionUser handles PUT /v1/admin/users/:user_id
func (h *AdminHandler) ProvisionUser(c *gin.Context) {
	var input models.AccountInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}
	input.UserID = c.Param("user_id")
	if input.Role == "" {
		input.Role = models.RoleUser
	}

	user, err := h.services.Admin.ProvisionUser(c.Request.Context(), mustIdentity(c), &input)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// SuspendUser handles POST /v1/admin/users/:user_id/suspend
// An omitted until suspends indefinitely.
func (h *AdminHandler) SuspendUser(c *gin.Context) {
	var body suspendRequest
	if !bindOptionalJSON(c, &body) {
		return
	}

	user, err := h.services.Admin.Suspend(c.Request.Context(), mustIdentity(c), c.Param("user_id"), body.Until, body.Reason)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UnsuspendUser handles POST /v1/admin/users/:user_id/unsuspend
func (h *AdminHandler) UnsuspendUser(c *gin.Context) {
	user, err := h.services.Admin.Unsuspend(c.Request.Context(), mustIdentity(c), c.Param("user_id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// SoftDeleteUser handles POST /v1/admin/users/:user_id/soft-delete
func (h *AdminHandler) SoftDeleteUser(c *gin.Context) {
	var body reasonRequest
	if !bindOptionalJSON(c, &body) {
		return
	}

	user, err := h.services.Admin.SoftDelete(c.Request.Context(), mustIdentity(c), c.Param("user_id"), body.Reason)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// PermanentlyDeleteUser handles DELETE /v1/admin/users/:user_id?confirm=true
func (h *AdminHandler) PermanentlyDeleteUser(c *gin.Context) {
	confirm, _ := strconv.ParseBool(c.Query("confirm"))

	report, err := h.services.Admin.PermanentDelete(c.Request.Context(), mustIdentity(c), c.Param("user_id"), confirm)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// ListActivity handles GET /v1/admin/activity
func (h *AdminHandler) ListActivity(c *gin.Context) {
	req, ok := bindPage(c)
	if !ok {
		return
	}
	var filter models.ActivityFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid filter"})
		return
	}

	page, err := h.services.Activity.List(c.Request.Context(), filter, req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// ActivitySummary handles GET /v1/admin/activity/summary
func (h *AdminHandler) ActivitySummary(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	summary, err := h.services.Activity.Summary(c.Request.Context(), limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"actions": summary})
}
