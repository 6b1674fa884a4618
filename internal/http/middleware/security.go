package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const defaultHSTSMaxAge = 180 * 24 * time.Hour

// SecurityOptions configures SecurityHeaders.
type SecurityOptions struct {
	// EnableHSTS sends Strict-Transport-Security on HTTPS requests. Only
	// enable when traffic is HTTPS end to end.
	EnableHSTS bool
	HSTSMaxAge time.Duration // defaults to 180 days

	// EnablePolicy adds Permissions-Policy and
	// X-Permitted-Cross-Domain-Policies.
	EnablePolicy bool

	// NoStore marks every response no-store. NoStorePrefixes does it only
	// for matching paths (token-bearing auth routes).
	NoStore         bool
	NoStorePrefixes []string

	// UploadPrefixes serve user supplied files. Those responses get a
	// sandboxing CSP and may be embedded cross-origin.
	UploadPrefixes []string
}

type header struct{ name, value string }

// SecurityHeaders sets hardening headers for a JSON API before the handler
// runs.
func SecurityHeaders(opt SecurityOptions) gin.HandlerFunc {
	base := []header{
		{"X-Content-Type-Options", "nosniff"},
		{"X-Frame-Options", "DENY"},
		{"Referrer-Policy", "no-referrer"},
	}
	if opt.EnablePolicy {
		base = append(base,
			header{"Permissions-Policy", "geolocation=(), microphone=(), camera=(), payment=()"},
			header{"X-Permitted-Cross-Domain-Policies", "none"},
		)
	}
	noStore := []header{
		{"Cache-Control", "no-store"},
		{"Pragma", "no-cache"},
		{"Expires", "0"},
	}
	upload := []header{
		{"Content-Security-Policy", "default-src 'none'; img-src 'self'; sandbox"},
		{"Cross-Origin-Resource-Policy", "cross-origin"},
	}

	maxAge := opt.HSTSMaxAge
	if maxAge <= 0 {
		maxAge = defaultHSTSMaxAge
	}
	hsts := "max-age=" + strconv.Itoa(int(maxAge.Seconds())) + "; includeSubDomains; preload"

	return func(c *gin.Context) {
		h := c.Writer.Header()
		path := c.Request.URL.Path

		set(h, base)
		if opt.NoStore || hasAnyPrefix(path, opt.NoStorePrefixes) {
			set(h, noStore)
		}
		if hasAnyPrefix(path, opt.UploadPrefixes) {
			set(h, upload)
		}
		if opt.EnableHSTS && isHTTPS(c.Request) {
			h.Set("Strict-Transport-Security", hsts)
		}
		c.Next()
	}
}

func set(h http.Header, hs []header) {
	for _, kv := range hs {
		h.Set(kv.name, kv.value)
	}
}

// isHTTPS reports whether r arrived over TLS, directly or through a proxy
// that set X-Forwarded-Proto.
func isHTTPS(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

func hasAnyPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
