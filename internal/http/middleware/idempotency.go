package middleware

import (
	"context"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-bootcamp-backend/internal/apperr"
)

// Idempotency headers.
const (
	HeaderIdempotencyKey      = "Idempotency-Key"
	HeaderIdempotencyReplayed = "Idempotency-Replayed"
)

const (
	ctxKeyIdemKey    = "idem.key"
	ctxKeyIdemReplay = "idem.replay"
	ctxKeyRateBypass = "rate.bypass"

	defaultKeyMaxLen = 200
)

var defaultKeyPattern = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)

// ErrBadIdempotencyKey rejects a malformed Idempotency-Key header.
var ErrBadIdempotencyKey = apperr.New(http.StatusBadRequest, "bad_idempotency_key", "Invalid Idempotency-Key")

// GetIdempotencyKey returns the key accepted by IdempotencyValidator.
func GetIdempotencyKey(c *gin.Context) (string, bool) {
	s := c.GetString(ctxKeyIdemKey)
	return s, s != ""
}

// IsReplay reports whether a stored result exists for this request's
// (user, scope, key).
func IsReplay(c *gin.Context) bool {
	return c.GetBool(ctxKeyIdemReplay)
}

// IdempotencyScope is "METHOD route", e.g. "POST /api/v1/bootcamps". A key
// reused on another route does not collide.
func IdempotencyScope(c *gin.Context) string {
	route := c.FullPath()
	if route == "" {
		route = c.Request.URL.Path
	}
	return c.Request.Method + " " + route
}

// IdempotencyOptions configures IdempotencyValidator.
type IdempotencyOptions struct {
	MaxLen  int            // default 200
	Pattern *regexp.Regexp // default ^[A-Za-z0-9._~\-:]+$
}

// IdempotencyLookup reports whether a live record exists for
// (userID, scope, key) at now.
type IdempotencyLookup func(ctx context.Context, userID, scope, key string, now time.Time) (bool, error)

// IdempotencyValidator accepts an Idempotency-Key on unsafe methods. A
// malformed key is forwarded as a 400. For authenticated callers lookup is
// consulted; a hit marks the request as a replay that skips rate limiting.
// Lookup failures are logged and treated as a miss. Safe methods ignore
// the header.
//
// Install after Authenticate and before the rate limiter.
func IdempotencyValidator(opts IdempotencyOptions, lookup IdempotencyLookup) gin.HandlerFunc {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = defaultKeyMaxLen
	}
	pat := opts.Pattern
	if pat == nil {
		pat = defaultKeyPattern
	}

	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" || safeMethod(c.Request.Method) {
			c.Next()
			return
		}
		if len(key) > maxLen || !pat.MatchString(key) {
			_ = c.Error(ErrBadIdempotencyKey)
			c.Abort()
			return
		}
		c.Set(ctxKeyIdemKey, key)

		uid := ActorFrom(c).ID
		if lookup == nil || uid == "" {
			c.Next()
			return
		}
		hit, err := lookup(c.Request.Context(), uid, IdempotencyScope(c), key, time.Now().UTC())
		if err != nil {
			LoggerFrom(c).Warn().Err(err).Str("scope", IdempotencyScope(c)).Msg("idempotency lookup failed")
		}
		if hit {
			c.Set(ctxKeyIdemReplay, true)
			c.Set(ctxKeyRateBypass, true)
		}
		c.Next()
	}
}

func safeMethod(m string) bool {
	switch m {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}
