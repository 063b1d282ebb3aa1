package auth

import "github.com/golang-jwt/jwt/v5"

// Roles carried in session claims.
const (
	RoleIndustry = "industry"
	RoleAdmin    = "admin"
)

// SessionClaims is the JWT claims structure for portal sessions. It embeds
// jwt.RegisteredClaims for standard fields (exp, iat) and adds the identity
// of the logged-in account. Industry sessions carry the owning industry row
// so handlers do not need a lookup per request.
type SessionClaims struct {
	jwt.RegisteredClaims
	UserID     int64  `json:"user_id"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	IndustryID int64  `json:"industry_id,omitempty"`
}
