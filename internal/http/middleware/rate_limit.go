package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/pusdatin/satudata-backend/internal/http/response"
	"github.com/pusdatin/satudata-backend/internal/observability"
	"github.com/pusdatin/satudata-backend/internal/platform/apierr"
	"github.com/pusdatin/satudata-backend/internal/platform/logger"
)

// RateLimiter is a fixed-window counter per actor and route kept in Redis.
// Redis failures let the request through.
type RateLimiter struct {
	log     *logger.Logger
	rdb     redis.UniversalClient
	metrics *observability.Metrics
	limit   int64
	window  time.Duration
	prefix  string
	now     func() time.Time
}

func NewRateLimiter(log *logger.Logger, rdb redis.UniversalClient, metrics *observability.Metrics, limit int, window time.Duration) *RateLimiter {
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{
		log:     log.With("middleware", "RateLimiter"),
		rdb:     rdb,
		metrics: metrics,
		limit:   int64(limit),
		window:  window,
		prefix:  "satudata:ratelimit",
		now:     time.Now,
	}
}

func (rl *RateLimiter) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl == nil || rl.rdb == nil || rl.limit <= 0 {
			c.Next()
			return
		}
		subject := "ip:" + c.ClientIP()
		if actor := ActorFrom(c); actor.Complete() {
			subject = actor.ID.String()
		}
		route := c.FullPath()
		now := rl.now()
		windowStart := now.Truncate(rl.window)
		key := fmt.Sprintf("%s:%s:%s:%d", rl.prefix, route, subject, windowStart.Unix())

		count, err := rl.incr(c.Request.Context(), key)
		if err != nil {
			rl.log.Warn("rate limiter unavailable; request allowed", "route", route, "error", err)
			c.Next()
			return
		}
		remaining := rl.limit - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.FormatInt(rl.limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		if count > rl.limit {
			retry := int(windowStart.Add(rl.window).Sub(now).Seconds()) + 1
			c.Header("Retry-After", strconv.Itoa(retry))
			rl.metrics.IncRateLimited(route)
			response.AbortErr(c, apierr.New(http.StatusTooManyRequests, "rate_limited",
				fmt.Errorf("upload limit of %d per %s reached", rl.limit, rl.window)))
			return
		}
		c.Next()
	}
}

func (rl *RateLimiter) incr(ctx context.Context, key string) (int64, error) {
	var incr *redis.IntCmd
	_, err := rl.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, rl.window+time.Second)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return incr.Val(), nil
}
