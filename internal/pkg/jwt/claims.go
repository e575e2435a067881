package jwt

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims represents the JWT claims of an access token.
type Claims struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	IsStaff  bool   `json:"is_staff,omitempty"`
	jwt.RegisteredClaims
}
