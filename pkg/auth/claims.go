package auth

import (
	"github.com/goldstore/storefront/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the subset of the backend-issued bearer token the storefront reads
// for role checks. The backend stays the only party that verifies signatures.
type Claims struct {
	UserID string     `json:"user_id,omitempty"`
	Email  string     `json:"email,omitempty"`
	Name   string     `json:"name,omitempty"`
	Role   enums.Role `json:"role"`
	jwt.RegisteredClaims
}

// Identity returns the user id from user_id, falling back to sub.
func (c *Claims) Identity() string {
	if c.UserID != "" {
		return c.UserID
	}
	return c.Subject
}
