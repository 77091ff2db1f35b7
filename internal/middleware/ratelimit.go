package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/psytest/internal/dto"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter hands out one token bucket per client IP. Idle buckets are
// dropped by a sweep that runs at most once per ttl.
type IPRateLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	limit     rate.Limit
	burst     int
	ttl       time.Duration
	lastSweep time.Time
}

func NewIPRateLimiter(perMinute int) *IPRateLimiter {
	if perMinute <= 0 {
		perMinute = 10
	}
	return &IPRateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    perMinute,
		ttl:      10 * time.Minute,
	}
}

func (l *IPRateLimiter) get(ip string, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) >= l.ttl {
		l.sweep(now)
	}
	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter
}

func (l *IPRateLimiter) sweep(now time.Time) {
	for k, v := range l.visitors {
		if now.Sub(v.lastSeen) > l.ttl {
			delete(l.visitors, k)
		}
	}
	l.lastSweep = now
}

func (l *IPRateLimiter) Allow(ip string) bool {
	return l.get(ip, time.Now()).Allow()
}

func RateLimit(l *IPRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow(c.ClientIP()) {
			log.Warn().Str("client_ip", c.ClientIP()).Str("path", c.FullPath()).Msg("RateLimit: Too many requests")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.ErrorResponse{Message: "too many requests, try again later"})
			return
		}
		c.Next()
	}
}
