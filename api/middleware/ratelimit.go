package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/aeoaudit/config"
	"github.com/use-agent/aeoaudit/models"
	"golang.org/x/time/rate"
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterStore holds one token bucket per identity.
type limiterStore struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	limit    rate.Limit
	burst    int
}

func (s *limiterStore) get(identity string, now time.Time) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.limiters[identity]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.limiters[identity] = entry
	}
	entry.lastSeen = now
	return entry.limiter
}

func (s *limiterStore) evictIdle(cutoff time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, entry := range s.limiters {
		if entry.lastSeen.Before(cutoff) {
			delete(s.limiters, id)
		}
	}
}

// RateLimit returns per-identity (API key or IP) token-bucket rate limiting
// middleware powered by golang.org/x/time/rate. Audits are expensive, so
// limits are meant to be low; rejected requests get a Retry-After hint.
//
// Entries unused for 1 hour are evicted by a background goroutine that runs
// every 5 minutes.
func RateLimit(cfg config.RateLimitConfig) gin.HandlerFunc {
	if cfg.RequestsPerSecond <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	store := &limiterStore{
		limiters: make(map[string]*limiterEntry),
		limit:    rate.Limit(cfg.RequestsPerSecond),
		burst:    burst,
	}

	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			store.evictIdle(time.Now().Add(-1 * time.Hour))
		}
	}()

	retryAfter := strconv.Itoa(int(math.Ceil(1 / cfg.RequestsPerSecond)))

	return func(c *gin.Context) {
		// Prefer API key as identity (set by auth middleware); fall back to IP.
		identity := c.ClientIP()
		if key := c.GetString(APIKeyContextKey); key != "" {
			identity = key
		}

		if !store.get(identity, time.Now()).Allow() {
			c.Header("Retry-After", retryAfter)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, models.ErrorResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:      models.ErrCodeRateLimited,
					Message:   "rate limit exceeded, please slow down",
					Retryable: true,
				},
			})
			return
		}

		c.Next()
	}
}
