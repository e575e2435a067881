package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"gitlab.com/timkado/api/agency-core/internal/tenant"
)

// RequestIDHeader carries the request id in and out.
const RequestIDHeader = "X-Request-ID"

// RequestID reuses the caller's request id or generates one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Header(RequestIDHeader, id)
		c.Request = c.Request.WithContext(tenant.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}
