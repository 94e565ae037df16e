package middleware

import (
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/vietanh2810/stand-portal-api/internal/api/handler/v1/response"
)

var errRateLimited = errors.New("too many messages, please slow down")

const (
	limiterIdle  = 10 * time.Minute
	limiterSweep = time.Minute
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per authenticated user, falling back to
// the client IP for anonymous requests.
type RateLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	lastSweep time.Time
	limit     rate.Limit
	burst     int
	now       func() time.Time
}

func NewRateLimiter(perMinute, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}

	return &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(float64(perMinute) / 60),
		burst:    burst,
		now:      time.Now,
	}
}

func (rl *RateLimiter) allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.sweep(now)

	v, ok := rl.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = now

	return v.limiter.AllowN(now, 1)
}

// sweep drops idle visitors at most once per limiterSweep. Callers hold mu.
func (rl *RateLimiter) sweep(now time.Time) {
	if rl.lastSweep.IsZero() {
		rl.lastSweep = now
		return
	}
	if now.Sub(rl.lastSweep) < limiterSweep {
		return
	}

	for k, v := range rl.visitors {
		if now.Sub(v.lastSeen) > limiterIdle {
			delete(rl.visitors, k)
		}
	}
	rl.lastSweep = now
}

func (rl *RateLimiter) Limit() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		key := "ip:" + ctx.ClientIP()
		if id, ok := UserID(ctx); ok {
			key = "user:" + strconv.FormatUint(uint64(id), 10)
		}

		if !rl.allow(key) {
			zap.L().Warn("rate limit exceeded", zap.String("key", key))
			response.RenderErr(ctx, response.ErrTooManyRequests(errRateLimited))
			return
		}

		ctx.Next()
	}
}
