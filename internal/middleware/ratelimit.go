package middleware

import (
	"fmt"
	"net/http"
	"time"

	redisc "github.com/bookwright/core/internal/pkg/redis"
	"github.com/gin-gonic/gin"
)

// RateLimit returns a middleware enforcing a fixed-window limit of max
// requests per window. Authenticated requests are keyed by user ID,
// anonymous ones by client IP. Generation endpoints are the intended
// target; a provider call per request makes them expensive to abuse.
func RateLimit(rc *redisc.Client, max int64, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rc == nil {
			c.Next()
			return
		}

		subject := CurrentUserID(c)
		if subject == "" {
			subject = c.ClientIP()
		}
		if subject == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		windowKey := time.Now().Unix() / int64(window/time.Second)
		key := fmt.Sprintf("bw:rate_limit:%s:%d", subject, windowKey)

		count, err := rc.Raw().Incr(ctx, key).Result()
		if err != nil {
			// Redis being down should not take the API with it.
			c.Next()
			return
		}

		if count == 1 {
			rc.Raw().PExpire(ctx, key, window+time.Second)
		}

		if count > max {
			c.Header("Retry-After", fmt.Sprintf("%d", int(window/time.Second)))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"ok":      0,
				"code":    http.StatusTooManyRequests,
				"message": "too many requests, slow down",
			})
			return
		}

		c.Next()
	}
}
