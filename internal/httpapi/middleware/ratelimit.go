package middleware

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/everafter-ai/everafter/internal/common"
	"github.com/everafter-ai/everafter/internal/store/redisstore"
)

// EventRateLimit guards the public ingestion path with the sliding-window
// limiter, keyed on the caller-supplied session id. Requests without a
// session id are rejected before touching redis.
func EventRateLimit(rds *redisstore.Store, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("X-Session-ID")
		if sessionID == "" {
			sessionID = c.Query("session_id")
		}
		if sessionID == "" {
			common.Fail(c, http.StatusBadRequest, 10010, "session id required")
			c.Abort()
			return
		}
		// the limited key is the session of record for the whole request;
		// handlers must not trust a different one from the body
		c.Set(SessionIDKey, sessionID)

		allowed, err := rds.Allow(c.Request.Context(), sessionID, limit, window)
		if err != nil {
			// limiter outage should not take the ingestion path down
			log.Printf("[ratelimit] redis error session=%s err=%v", sessionID, err)
			c.Next()
			return
		}
		if !allowed {
			common.Fail(c, http.StatusTooManyRequests, 42900, "rate limit exceeded")
			c.Abort()
			return
		}
		c.Next()
	}
}
