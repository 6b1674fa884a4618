package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/tbourn/go-bootcamp-backend/internal/apperr"
)

// Rate limit response headers.
const (
	HeaderRateLimit     = "X-RateLimit-Limit"
	HeaderRateRemaining = "X-RateLimit-Remaining"
)

// KeyFunc maps a request to the identity whose bucket it draws from.
type KeyFunc func(*gin.Context) string

// KeyByUserOrIP keys authenticated callers by user id and everyone else by
// client IP. Must run after Authenticate.
func KeyByUserOrIP() KeyFunc {
	return func(c *gin.Context) string {
		if id := ActorFrom(c).ID; id != "" {
			return "user:" + id
		}
		return "ip:" + c.ClientIP()
	}
}

type bucket struct {
	lim  *rate.Limiter
	seen time.Time
}

// RateLimiter is a process-local token bucket per identity. Buckets idle for
// longer than the idle window are dropped on the next sweep, which runs at
// most once per window.
type RateLimiter struct {
	limit rate.Limit
	burst int
	key   KeyFunc
	idle  time.Duration
	now   func() time.Time

	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

// NewRateLimiter allows rps requests per second with bursts of burst per key.
// burst is at least 1.
func NewRateLimiter(rps float64, burst int, key KeyFunc) *RateLimiter {
	return &RateLimiter{
		limit:   rate.Limit(rps),
		burst:   max(burst, 1),
		key:     key,
		idle:    10 * time.Minute,
		now:     time.Now,
		buckets: make(map[string]*bucket),
	}
}

// Len reports how many buckets are live.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.buckets)
}

func (rl *RateLimiter) bucketFor(key string, now time.Time) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if now.Sub(rl.lastSweep) >= rl.idle {
		for k, b := range rl.buckets {
			if now.Sub(b.seen) >= rl.idle {
				delete(rl.buckets, k)
			}
		}
		rl.lastSweep = now
	}

	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(rl.limit, rl.burst)}
		rl.buckets[key] = b
	}
	b.seen = now
	return b.lim
}

// IsRateBypass reports whether IdempotencyValidator found a stored result
// for this request. Replays do not spend tokens.
func IsRateBypass(c *gin.Context) bool {
	b, _ := c.Get(ctxKeyRateBypass)
	v, _ := b.(bool)
	return v
}

// Handler spends one token per request. Denied requests get Retry-After set
// to the wait until the next token and a forwarded 429.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	limit := strconv.Itoa(rl.burst)
	return func(c *gin.Context) {
		if IsRateBypass(c) {
			c.Next()
			return
		}

		now := rl.now()
		lim := rl.bucketFor(rl.key(c), now)
		c.Header(HeaderRateLimit, limit)

		if lim.AllowN(now, 1) {
			c.Header(HeaderRateRemaining, strconv.Itoa(int(lim.TokensAt(now))))
			c.Next()
			return
		}

		c.Header(HeaderRateRemaining, "0")
		c.Header("Retry-After", strconv.Itoa(retryAfter(lim, now)))
		_ = c.Error(apperr.New(http.StatusTooManyRequests, apperr.CodeRateLimited, "Too many requests, please try again later"))
		c.Abort()
	}
}

// retryAfter is the whole seconds until lim has a token again, at least 1.
func retryAfter(lim *rate.Limiter, now time.Time) int {
	r := lim.ReserveN(now, 1)
	if !r.OK() {
		return 1
	}
	d := r.DelayFrom(now)
	r.CancelAt(now)
	return max(1, int(math.Ceil(d.Seconds())))
}
