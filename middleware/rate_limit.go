package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/inflame-ue/goblog/config"
	"github.com/inflame-ue/goblog/utils"
)

const limiterIdleTTL = 5 * time.Minute

// limiterPool hands out one token bucket per client IP and evicts buckets
// that have been idle past limiterIdleTTL.
type limiterPool struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	buckets map[string]*clientBucket
}

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newLimiterPool(perMinute int) *limiterPool {
	perMinute = max(perMinute, 1)
	return &limiterPool{
		limit:   rate.Every(time.Minute / time.Duration(perMinute)),
		burst:   max(perMinute/2, 1),
		buckets: map[string]*clientBucket{},
	}
}

func (p *limiterPool) allow(ip string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := time.Now()
	for key, b := range p.buckets {
		if now.Sub(b.lastSeen) > limiterIdleTTL {
			delete(p.buckets, key)
		}
	}

	b, ok := p.buckets[ip]
	if !ok {
		b = &clientBucket{limiter: rate.NewLimiter(p.limit, p.burst)}
		p.buckets[ip] = b
	}
	b.lastSeen = now
	return b.limiter.Allow()
}

// RateLimit throttles the wrapped routes with a per-IP token bucket sized
// from the configured requests-per-minute budget.
func RateLimit() gin.HandlerFunc {
	pool := newLimiterPool(config.Get().RateLimitPerMinute)

	return func(ctx *gin.Context) {
		if !pool.allow(ctx.ClientIP()) {
			utils.Error(ctx, http.StatusTooManyRequests, 42901, "rate limit exceeded")
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}
