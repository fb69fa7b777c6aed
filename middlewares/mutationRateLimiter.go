package middlewares

import (
	"net/http"
	"time"

	"civicsync-admin/config"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// MutationRateLimiter caps issue mutations per user within window. It must
// run after AuthMiddleware.
func MutationRateLimiter(rdb *redis.Client, queuePrefix string, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := CurrentSession(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			c.Abort()
			return
		}

		ctx := c.Request.Context()
		userKey := queuePrefix + ":" + s.User.Username

		count, err := rdb.Incr(ctx, userKey).Result()
		if err != nil {
			config.Error("redis error incrementing %s: %v", userKey, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "redis error incrementing count"})
			c.Abort()
			return
		}

		// First hit opens the window.
		if count == 1 {
			if err := rdb.Expire(ctx, userKey, window).Err(); err != nil {
				config.Error("redis error setting TTL on %s: %v", userKey, err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "redis error setting TTL"})
				c.Abort()
				return
			}
		}

		if count > int64(limit) {
			retryAfter, _ := rdb.TTL(ctx, userKey).Result()
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": retryAfter.Seconds(),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
