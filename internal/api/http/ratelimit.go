package http

import (
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	apperrors "github.com/cityfeedback/feedback-service/pkg/util/errorutil"
)

const limiterIdleCleanup = 5 * time.Minute

// RateLimitConfig defines a token bucket per client IP.
type RateLimitConfig struct {
	RequestsPerMinute int
	Burst             int
}

type ipLimiter struct {
	limiters    sync.Map // map[string]*rate.Limiter
	rate        rate.Limit
	burst       int
	mu          sync.Mutex
	lastCleanup time.Time
}

func (l *ipLimiter) get(key string) *rate.Limiter {
	if limiter, ok := l.limiters.Load(key); ok {
		return limiter.(*rate.Limiter)
	}
	actual, _ := l.limiters.LoadOrStore(key, rate.NewLimiter(l.rate, l.burst))
	l.maybeCleanup()
	return actual.(*rate.Limiter)
}

// maybeCleanup drops limiters whose bucket is full again.
func (l *ipLimiter) maybeCleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if time.Since(l.lastCleanup) < limiterIdleCleanup {
		return
	}
	l.lastCleanup = time.Now()
	l.limiters.Range(func(key, value any) bool {
		if value.(*rate.Limiter).Tokens() >= float64(l.burst) {
			l.limiters.Delete(key)
		}
		return true
	})
}

// RateLimitByIP rejects callers that exceed cfg with TOO_MANY_REQUESTS.
func RateLimitByIP(cfg RateLimitConfig, logger *zap.Logger) fiber.Handler {
	l := &ipLimiter{
		rate:        rate.Limit(float64(cfg.RequestsPerMinute) / time.Minute.Seconds()),
		burst:       cfg.Burst,
		lastCleanup: time.Now(),
	}
	return func(c *fiber.Ctx) error {
		key := c.IP()
		limiter := l.get(key)
		if limiter.Allow() {
			return c.Next()
		}

		reservation := limiter.Reserve()
		retryAfter := max(int(reservation.Delay().Seconds()), 1)
		reservation.Cancel()

		c.Set(fiber.HeaderRetryAfter, strconv.Itoa(retryAfter))
		c.Set("X-RateLimit-Limit", strconv.Itoa(cfg.RequestsPerMinute))
		logger.Warn("rate limit exceeded",
			zap.String("ip", key),
			zap.String("path", c.Path()),
			zap.Int("retry_after", retryAfter))
		return apperrors.NewTooManyRequests("too many requests, please try again later")
	}
}
