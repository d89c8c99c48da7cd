package types

import (
	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims represents the claims in a session token
type TokenClaims struct {
	jwt.RegisteredClaims
	UserID int    `json:"user_id"`
	Name   string `json:"name"`
	Role   Role   `json:"role"`
}

// Caller converts the claims into the request caller
func (c *TokenClaims) Caller() Caller {
	role := c.Role
	if role != RoleAdmin {
		role = RoleUser
	}
	return Caller{UserID: c.UserID, Name: c.Name, Role: role}
}
