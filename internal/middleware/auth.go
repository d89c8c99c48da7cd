package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipehub/backend/internal/types"
)

// CallerKey is the gin context key holding the types.Caller
const CallerKey = "caller"

// TokenValidator is an interface for validating JWT tokens
type TokenValidator interface {
	ValidateToken(token string) (*types.TokenClaims, error)
}

// AuthMiddleware rejects requests without a valid bearer token
func AuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid authorization header"})
			c.Abort()
			return
		}

		claims, err := validator.ValidateToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			c.Abort()
			return
		}

		setCaller(c, claims.Caller())
		c.Next()
	}
}

// OptionalAuth identifies the caller when a token is present and treats
// everyone else as a guest. A bad token is still rejected.
func OptionalAuth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			setCaller(c, types.Guest)
			c.Next()
			return
		}
		AuthMiddleware(validator)(c)
	}
}

// RequireRole aborts unless the caller has role. Must run after AuthMiddleware.
func RequireRole(role types.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := CallerFrom(c)
		allowed := false
		switch role {
		case types.RoleAdmin:
			allowed = caller.IsAdmin()
		case types.RoleUser:
			allowed = !caller.IsGuest()
		default:
			allowed = true
		}
		if !allowed {
			c.JSON(http.StatusForbidden, gin.H{"error": "you do not have permission to do that"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// CallerFrom returns the caller stored by the auth middleware, or Guest
func CallerFrom(c *gin.Context) types.Caller {
	if v, ok := c.Get(CallerKey); ok {
		if caller, ok := v.(types.Caller); ok {
			return caller
		}
	}
	return types.Guest
}

func setCaller(c *gin.Context, caller types.Caller) {
	c.Set(CallerKey, caller)
	c.Set("user_id", caller.UserID)
	c.Set("role", string(caller.Role))
}

func bearerToken(c *gin.Context) (string, bool) {
	parts := strings.Fields(c.GetHeader("Authorization"))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}
