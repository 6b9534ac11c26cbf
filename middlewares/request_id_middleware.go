// middlewares/request_id_middleware.go
package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/avandorn1/LLM-food-logging/config"
)

// RequestID tags every request with a uuid, echoes it in the X-Request-ID
// header and logs one access line per request.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("requestID", id)
		c.Writer.Header().Set("X-Request-ID", id)

		start := time.Now()
		c.Next()

		config.Log.Infow("request",
			"id", id,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
