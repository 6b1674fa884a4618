// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements token authentication and role checks.
//
//   - Authenticate() reads a bearer token (Authorization header, falling back
//     to the "token" cookie), verifies it and stores the caller's identity in
//     the Gin context. It never rejects a request: anonymous callers simply
//     have no identity, which keeps rate limiting and idempotency keyed on the
//     user where one exists.
//   - Protect() rejects requests without an identity with 401.
//   - Authorize(roles...) rejects identities whose role is not listed with 403.
//
// Failures are forwarded through c.Error so the error formatter renders them.
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-bootcamp-backend/internal/apperr"
	"github.com/tbourn/go-bootcamp-backend/internal/auth"
	"github.com/tbourn/go-bootcamp-backend/internal/domain"
)

const (
	ctxKeyUserID   = "userID"
	ctxKeyUserRole = "userRole"

	// TokenCookie is the cookie carrying the session token.
	TokenCookie = "token"
)

// TokenVerifier checks a session token and returns its claims.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// Authenticate attaches the identity carried by a valid token, if any.
func Authenticate(v TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok := bearerToken(c)
		if tok == "" || v == nil {
			c.Next()
			return
		}
		claims, err := v.Verify(tok)
		if err != nil {
			LoggerFrom(c).Debug().Err(err).Msg("ignoring invalid token")
			c.Next()
			return
		}
		c.Set(ctxKeyUserID, claims.UserID)
		c.Set(ctxKeyUserRole, claims.Role)
		c.Next()
	}
}

// Protect requires an authenticated caller.
func Protect() gin.HandlerFunc {
	return func(c *gin.Context) {
		if ActorFrom(c).ID == "" {
			_ = c.Error(apperr.Unauthorized("Not authorized to access this route"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// Authorize requires the caller's role to be one of roles. Use after Protect.
func Authorize(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := ActorFrom(c).Role
		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}
		_ = c.Error(apperr.Forbidden("User role %s is not authorized to access this route", role))
		c.Abort()
	}
}

// ActorFrom returns the authenticated caller. The zero Actor means anonymous.
func ActorFrom(c *gin.Context) domain.Actor {
	return domain.Actor{ID: c.GetString(ctxKeyUserID), Role: c.GetString(ctxKeyUserRole)}
}

func bearerToken(c *gin.Context) string {
	h := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	if ck, err := c.Cookie(TokenCookie); err == nil && ck != "none" {
		return ck
	}
	return ""
}
