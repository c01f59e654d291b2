package auth

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// AdminClaims is the token shape accepted on admin write routes. It matches
// Supabase access tokens, where custom roles live in app_metadata.
type AdminClaims struct {
	Role        string      `json:"role,omitempty"`
	Email       string      `json:"email,omitempty"`
	AppMetadata AppMetadata `json:"app_metadata,omitempty"`
	jwt.RegisteredClaims
}

type AppMetadata struct {
	Role string `json:"role,omitempty"`
}

// HasRole reports whether either role claim equals role (case-insensitive).
// An empty role is always satisfied.
func (c *AdminClaims) HasRole(role string) bool {
	role = strings.TrimSpace(role)
	if role == "" {
		return true
	}
	return strings.EqualFold(c.Role, role) || strings.EqualFold(c.AppMetadata.Role, role)
}
