package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/musicstore/storefront/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const rateLimitWindow = time.Minute

// windowCounter is the part of the Redis client the limiter needs
type windowCounter interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// RateLimit implements a fixed one-minute window per client IP in Redis.
// Requests pass when Redis is not configured or unreachable.
func RateLimit(cfg *config.Config, redisClient *redis.Client, logger logrus.FieldLogger) gin.HandlerFunc {
	if redisClient == nil || cfg.Security.RateLimitPerMinute <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	return rateLimit(cfg.Security.RateLimitPerMinute, redisClient, logger)
}

func rateLimit(limit int, counter windowCounter, logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("rate_limit:%s", c.ClientIP())

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		count, err := counter.Incr(ctx, key).Result()
		if err != nil {
			logger.WithError(err).Warn("Rate limiter unavailable, allowing request")
			c.Next()
			return
		}

		// The window starts with the first request; later requests must not extend it.
		if count == 1 {
			if err := counter.Expire(ctx, key, rateLimitWindow).Err(); err != nil {
				logger.WithError(err).Warn("Failed to set rate limit window")
			}
		}

		remaining := limit - int(count)
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if int(count) > limit {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded",
				"retry_after": int(rateLimitWindow.Seconds()),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
