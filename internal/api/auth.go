package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/pageza/recipehub/backend/internal/middleware"
	"github.com/pageza/recipehub/backend/internal/service"
	"github.com/pageza/recipehub/backend/internal/types"
)

// AuthHandler handles login and registration
type AuthHandler struct {
	authService service.IAuthService
	log         logrus.FieldLogger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService service.IAuthService, log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		log:         log.WithField("handler", "auth"),
	}
}

// RegisterRoutes registers the auth routes
func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		auth.POST("/login", h.Login)
		auth.POST("/register", middleware.OptionalAuth(h.authService), h.Register)
	}
}

// Login exchanges backend credentials for a session token
func (h *AuthHandler) Login(c *gin.Context) {
	var req types.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Register creates a backend account. Only admins may create admins.
func (h *AuthHandler) Register(c *gin.Context) {
	var req types.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name, a valid email and a password of at least 6 characters are required"})
		return
	}

	userID, err := h.authService.Register(c.Request.Context(), middleware.CallerFrom(c), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	resp := gin.H{"message": "Registration successful"}
	if userID > 0 {
		resp["userId"] = userID
	}
	c.JSON(http.StatusCreated, resp)
}
