package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"go-bidtrack-backend/internal/delivery/http/response"
)

// RequestID tags every request with an id for response envelopes and logs.
// An inbound X-Request-ID is trusted so gateway traces line up.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(response.RequestIDKey, id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}
