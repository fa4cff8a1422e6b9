package middleware

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"insightlink/backend/common"

	"github.com/gin-gonic/gin"
)

// memoryRateLimiter is the fallback store when redis is not enabled. It keeps
// a sliding window of request timestamps per key.
type memoryRateLimiter struct {
	mu      sync.Mutex
	entries map[string][]time.Time
}

var memoryLimiter = &memoryRateLimiter{entries: make(map[string][]time.Time)}

func (m *memoryRateLimiter) allow(key string, maxRequests int, window time.Duration) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	cutoff := now.Add(-window)
	kept := m.entries[key][:0]
	for _, t := range m.entries[key] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	if len(kept) >= maxRequests {
		m.entries[key] = kept
		return false
	}
	m.entries[key] = append(kept, now)
	return true
}

func redisAllow(ctx context.Context, key string, maxRequests int, window time.Duration) bool {
	count, err := common.RDB.Incr(ctx, key).Result()
	if err != nil {
		// Rate limiting is advisory; a broken redis must not take the API down.
		return true
	}
	if count == 1 {
		common.RDB.Expire(ctx, key, window)
	}
	return count <= int64(maxRequests)
}

func rateLimit(mark string, maxRequests int, windowSeconds int64) gin.HandlerFunc {
	window := time.Duration(windowSeconds) * time.Second
	return func(c *gin.Context) {
		key := fmt.Sprintf("rate:%s:%s", mark, c.ClientIP())
		allowed := false
		if common.RedisEnabled {
			allowed = redisAllow(c, key, maxRequests, window)
		} else {
			allowed = memoryLimiter.allow(key, maxRequests, window)
		}
		if !allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"message": "too many requests",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

func GlobalAPIRateLimit() gin.HandlerFunc {
	return rateLimit("GA", common.GlobalApiRateLimitNum, common.GlobalApiRateLimitDuration)
}

// CriticalRateLimit guards login, register, and redemption endpoints.
func CriticalRateLimit() gin.HandlerFunc {
	return rateLimit("CT", common.CriticalRateLimitNum, common.CriticalRateLimitDuration)
}
