package middleware

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/libreclinica/api-gateway/internal/config"
	"github.com/libreclinica/api-gateway/internal/models"
	"github.com/libreclinica/api-gateway/internal/utils"
)

// RateLimiter enforces a fixed-window request limit per client IP. Counters
// live in redis when an address is configured so the limit holds across
// gateway replicas; otherwise an in-process window map serves a single
// instance.
type RateLimiter struct {
	cfg    *config.RateLimitConfig
	client *redis.Client
	logger *logrus.Logger

	mu      sync.Mutex
	windows map[string]*localWindow
}

type localWindow struct {
	count   int
	resetAt time.Time
}

// NewRateLimiter creates a rate limiter from configuration
func NewRateLimiter(cfg *config.RateLimitConfig, logger *logrus.Logger) *RateLimiter {
	rl := &RateLimiter{
		cfg:     cfg,
		logger:  logger,
		windows: make(map[string]*localWindow),
	}
	if cfg.RedisAddr != "" {
		rl.client = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	}
	return rl
}

// Middleware returns the gin handler enforcing the limit. Disabled
// configuration yields a no-op.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	if !rl.cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		allowed, err := rl.allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			// Redis being down must not take request traffic with it.
			rl.logger.WithError(err).Warn("Rate limit check failed, allowing request")
			c.Next()
			return
		}
		if !allowed {
			utils.SendErrorResponse(c, http.StatusTooManyRequests, models.ErrCodeRateLimited,
				"Rate limit exceeded", "retry after the current window expires")
			c.Abort()
			return
		}
		c.Next()
	}
}

func (rl *RateLimiter) allow(ctx context.Context, clientIP string) (bool, error) {
	if rl.client != nil {
		return rl.allowRedis(ctx, clientIP)
	}
	return rl.allowLocal(clientIP), nil
}

func (rl *RateLimiter) allowRedis(ctx context.Context, clientIP string) (bool, error) {
	window := time.Now().Unix() / int64(rl.cfg.Window.Seconds())
	key := fmt.Sprintf("ratelimit:%s:%d", clientIP, window)

	count, err := rl.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to increment rate limit counter: %w", err)
	}
	if count == 1 {
		if err := rl.client.Expire(ctx, key, rl.cfg.Window).Err(); err != nil {
			return false, fmt.Errorf("failed to expire rate limit counter: %w", err)
		}
	}
	return count <= int64(rl.cfg.Limit), nil
}

func (rl *RateLimiter) allowLocal(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	w, ok := rl.windows[clientIP]
	if !ok || now.After(w.resetAt) {
		rl.windows[clientIP] = &localWindow{count: 1, resetAt: now.Add(rl.cfg.Window)}
		return true
	}
	w.count++
	return w.count <= rl.cfg.Limit
}

// Close releases the redis connection if one was opened
func (rl *RateLimiter) Close() error {
	if rl.client != nil {
		return rl.client.Close()
	}
	return nil
}
