package middleware

import (
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const maxQueryLog = 2048

// AccessLogOptions configures AccessLog.
type AccessLogOptions struct {
	// Scrub masks credentials, emails, phone numbers and ids in the logged
	// query string and headers, and logs the (masked) request headers.
	Scrub bool
	// MaskHeaders are masked entirely in addition to Authorization, Cookie
	// and Set-Cookie. Only used with Scrub.
	MaskHeaders []string
	// Quiet lists exact paths whose successful requests are not logged
	// (health probes, metric scrapes).
	Quiet []string
}

// AccessLog attaches a request-scoped zerolog logger to the context (see
// LoggerFrom) and writes one line per request once the chain returns. The
// level follows the status: error for 5xx, warn for 4xx, info otherwise.
//
// Install after RequestID.
func AccessLog(opts AccessLogOptions) gin.HandlerFunc {
	var sc *scrubber
	if opts.Scrub {
		sc = newScrubber(opts.MaskHeaders)
	}
	quiet := make(map[string]bool, len(opts.Quiet))
	for _, p := range opts.Quiet {
		quiet[p] = true
	}

	return func(c *gin.Context) {
		start := time.Now()
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}

		query := truncate(c.Request.URL.RawQuery, maxQueryLog)
		var headers map[string]string
		if sc != nil {
			query = sc.text(query)
			headers = sc.headers(c.Request.Header)
		}

		l := log.With().
			Str("request_id", RequestIDFrom(c)).
			Str("method", c.Request.Method).
			Str("path", route).
			Str("remote_ip", c.ClientIP()).
			Logger()
		c.Set(loggerKey, &l)
		c.Request = c.Request.WithContext(l.WithContext(c.Request.Context()))

		c.Next()

		status := c.Writer.Status()
		if status < http.StatusBadRequest && quiet[c.Request.URL.Path] {
			return
		}

		var ev *zerolog.Event
		switch {
		case status >= http.StatusInternalServerError:
			ev = l.Error()
		case status >= http.StatusBadRequest:
			ev = l.Warn()
		default:
			ev = l.Info()
		}
		ev = ev.
			Str("user_id", ActorFrom(c).ID).
			Str("query", query).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Int64("bytes_in", c.Request.ContentLength).
			Int("bytes_out", c.Writer.Size())
		if headers != nil {
			ev = ev.Interface("headers", headers)
		} else {
			ev = ev.Str("user_agent", c.Request.UserAgent()).Str("referer", c.Request.Referer())
		}
		if len(c.Errors) > 0 {
			ev = ev.Str("errors", c.Errors.String())
		}
		ev.Msg("request")
	}
}

const redacted = "[REDACTED]"

var (
	// Credential-looking query parameters, including the radius/geocoder
	// API key names clients sometimes forward.
	secretParamRE = regexp.MustCompile(`(?i)\b(token|password|key|apikey|secret)=[^&]*`)
	// ids go before phones so digit runs inside a UUID are not taken for one.
	uuidRE  = regexp.MustCompile(`(?i)\b[0-9a-f]{8}-[0-9a-f]{4}-[1-5][0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}\b`)
	emailRE = regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`)
	phoneRE = regexp.MustCompile(`\b(?:\+?\d{1,3}[ .-]?)?(?:\(?\d{2,4}\)?[ .-]?)?\d{3,4}[ .-]?\d{4}\b`)
)

type scrubber struct {
	masked map[string]bool
}

func newScrubber(extra []string) *scrubber {
	s := &scrubber{masked: map[string]bool{
		"authorization": true,
		"cookie":        true,
		"set-cookie":    true,
	}}
	for _, h := range extra {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			s.masked[h] = true
		}
	}
	return s
}

func (s *scrubber) text(v string) string {
	if v == "" {
		return v
	}
	v = secretParamRE.ReplaceAllString(v, "$1="+redacted)
	v = uuidRE.ReplaceAllString(v, "[REDACTED:id]")
	v = emailRE.ReplaceAllString(v, "[REDACTED:email]")
	return phoneRE.ReplaceAllString(v, "[REDACTED:phone]")
}

func (s *scrubber) headers(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, vv := range h {
		if s.masked[strings.ToLower(k)] {
			out[k] = redacted
			continue
		}
		out[k] = s.text(strings.Join(vv, ", "))
	}
	return out
}
