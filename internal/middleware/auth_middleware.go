package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"gitlab.com/timkado/api/agency-core/internal/pkg/jwt"
	"gitlab.com/timkado/api/agency-core/internal/pkg/response"
	"gitlab.com/timkado/api/agency-core/internal/tenant"
)

// TokenVerifier validates access tokens.
type TokenVerifier interface {
	Verify(token string) (*jwt.Claims, error)
}

// Auth validates the bearer token and puts the principal into the request context.
func Auth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			response.Unauthorized(c, "missing authorization token", nil)
			return
		}

		claims, err := verifier.Verify(token)
		if err != nil {
			response.Unauthorized(c, "invalid or expired token", err)
			return
		}

		p := tenant.Principal{UserID: claims.UserID, Username: claims.Username, IsStaff: claims.IsStaff}
		c.Request = c.Request.WithContext(tenant.WithPrincipal(c.Request.Context(), p))
		c.Set("user_id", claims.UserID)
		c.Next()
	}
}

// extractToken extracts the Bearer token from the Authorization header
func extractToken(c *gin.Context) string {
	parts := strings.Fields(c.GetHeader("Authorization"))
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1]
	}
	return ""
}
