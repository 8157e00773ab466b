package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// Limiter counts hits per key inside a fixed window.
type Limiter interface {
	// Allow records a hit and reports whether key is still within budget,
	// along with the time left in the current window.
	Allow(ctx context.Context, key string) (bool, time.Duration, error)
	Max() int
}

// RedisLimiter shares the window across instances through Redis.
type RedisLimiter struct {
	client *redis.Client
	max    int
	window time.Duration
	prefix string
}

func NewRedisLimiter(client *redis.Client, max int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, max: max, window: window, prefix: "ratelimit"}
}

func (l *RedisLimiter) Max() int { return l.max }

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	redisKey := fmt.Sprintf("%s:%s", l.prefix, key)

	count, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return true, 0, fmt.Errorf("redis incr: %w", err)
	}
	// The first hit opens the window; later hits must not extend it.
	if count == 1 {
		if err := l.client.Expire(ctx, redisKey, l.window).Err(); err != nil {
			return true, 0, fmt.Errorf("redis expire: %w", err)
		}
	}
	ttl, err := l.client.TTL(ctx, redisKey).Result()
	if err != nil || ttl < 0 {
		ttl = l.window
	}
	return count <= int64(l.max), ttl, nil
}

// MemoryLimiter keeps windows in process.
type MemoryLimiter struct {
	mu      sync.Mutex
	max     int
	window  time.Duration
	now     func() time.Time
	windows map[string]*window
}

type window struct {
	count int
	reset time.Time
}

func NewMemoryLimiter(max int, windowLen time.Duration) *MemoryLimiter {
	return &MemoryLimiter{max: max, window: windowLen, now: time.Now, windows: map[string]*window{}}
}

func (l *MemoryLimiter) Max() int { return l.max }

func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[key]
	if !ok || !now.Before(w.reset) {
		if len(l.windows) > 10_000 {
			l.sweep(now)
		}
		w = &window{reset: now.Add(l.window)}
		l.windows[key] = w
	}
	w.count++
	return w.count <= l.max, w.reset.Sub(now), nil
}

func (l *MemoryLimiter) sweep(now time.Time) {
	for k, w := range l.windows {
		if !now.Before(w.reset) {
			delete(l.windows, k)
		}
	}
}

// RateLimit budgets requests per client IP. Limiter errors fail open.
func RateLimit(l Limiter, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, ttl, err := l.Allow(c.Request.Context(), "ip:"+c.ClientIP())
		if err != nil {
			log.WithField("request_id", GetRequestID(c)).WithError(err).Warn("rate limiter unavailable")
			c.Next()
			return
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(l.Max()))
		if !allowed {
			c.Header("Retry-After", strconv.Itoa(int(ttl.Round(time.Second).Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error":   "Too many requests, please try again later",
			})
			return
		}
		c.Next()
	}
}
