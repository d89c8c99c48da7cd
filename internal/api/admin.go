package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/pageza/recipehub/backend/internal/middleware"
	"github.com/pageza/recipehub/backend/internal/models"
	"github.com/pageza/recipehub/backend/internal/service"
	"github.com/pageza/recipehub/backend/internal/types"
)

// AdminHandler exposes the moderation queue and its audit log
type AdminHandler struct {
	moderation   service.IModerationService
	auditService service.IAuditService
	auth         middleware.TokenValidator
	log          logrus.FieldLogger
}

// NewAdminHandler creates a new admin handler. auditService may be nil.
func NewAdminHandler(moderation service.IModerationService, auditService service.IAuditService, auth middleware.TokenValidator, log logrus.FieldLogger) *AdminHandler {
	return &AdminHandler{
		moderation:   moderation,
		auditService: auditService,
		auth:         auth,
		log:          log.WithField("handler", "admin"),
	}
}

// RegisterRoutes registers the admin routes
func (h *AdminHandler) RegisterRoutes(router *gin.RouterGroup) {
	admin := router.Group("/admin", middleware.AuthMiddleware(h.auth), middleware.RequireRole(types.RoleAdmin))
	{
		admin.GET("/pending", h.ListPending)
		admin.POST("/recipes/:id/approve", h.Approve)
		admin.POST("/recipes/:id/decline", h.Decline)
		admin.GET("/recipes/:id/state", h.State)
		admin.GET("/audit", h.Audit)
	}
}

// ListPending reloads and returns the pending review queue
func (h *AdminHandler) ListPending(c *gin.Context) {
	listing, err := h.moderation.ListPending(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, listingResponse(listing))
}

// Approve publishes a pending recipe
func (h *AdminHandler) Approve(c *gin.Context) {
	h.moderate(c, types.ActionApprove)
}

// Decline rejects a pending recipe
func (h *AdminHandler) Decline(c *gin.Context) {
	h.moderate(c, types.ActionDecline)
}

func (h *AdminHandler) moderate(c *gin.Context, action types.ModerationAction) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}

	moderate := h.moderation.Approve
	if action == types.ActionDecline {
		moderate = h.moderation.Decline
	}

	outcome, err := moderate(c.Request.Context(), id, middleware.CallerFrom(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, outcome)
}

// State reports the tracking state of one recipe in the queue
func (h *AdminHandler) State(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.moderation.State(id))
}

// Audit lists recent moderation events
func (h *AdminHandler) Audit(c *gin.Context) {
	if h.auditService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Audit log is not configured"})
		return
	}

	var filters models.ModerationEventFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid filters"})
		return
	}

	events, err := h.auditService.List(c.Request.Context(), filters)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if events == nil {
		events = []models.ModerationEvent{}
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}
