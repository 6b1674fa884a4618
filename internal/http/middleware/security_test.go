package middleware

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func securedRouter(opt SecurityOptions) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(SecurityHeaders(opt))
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }
	r.GET("/api/v1/bootcamps", ok)
	r.POST("/api/v1/auth/login", ok)
	r.GET("/uploads/*file", ok)
	return r
}

func securedGet(r http.Handler, method, path string, mutate ...func(*http.Request)) http.Header {
	req := httptest.NewRequest(method, path, nil)
	for _, m := range mutate {
		m(req)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Header()
}

func TestSecurityHeaders(t *testing.T) {
	tlsReq := func(r *http.Request) { r.TLS = &tls.ConnectionState{} }
	proxied := func(r *http.Request) { r.Header.Set("X-Forwarded-Proto", "HTTPS") }

	cases := []struct {
		name   string
		opt    SecurityOptions
		method string
		path   string
		mutate []func(*http.Request)
		want   map[string]string // "" means absent
	}{
		{
			name: "baseline only", method: http.MethodGet, path: "/api/v1/bootcamps",
			want: map[string]string{
				"X-Content-Type-Options":    "nosniff",
				"X-Frame-Options":           "DENY",
				"Referrer-Policy":           "no-referrer",
				"Permissions-Policy":        "",
				"Cache-Control":             "",
				"Strict-Transport-Security": "",
				"Content-Security-Policy":   "",
			},
		},
		{
			name: "policy and global no-store", method: http.MethodGet, path: "/api/v1/bootcamps",
			opt: SecurityOptions{EnablePolicy: true, NoStore: true},
			want: map[string]string{
				"Permissions-Policy":                "geolocation=(), microphone=(), camera=(), payment=()",
				"X-Permitted-Cross-Domain-Policies": "none",
				"Cache-Control":                     "no-store",
				"Pragma":                            "no-cache",
				"Expires":                           "0",
			},
		},
		{
			name: "auth prefix no-store", method: http.MethodPost, path: "/api/v1/auth/login",
			opt:  SecurityOptions{NoStorePrefixes: []string{"", "/api/v1/auth"}},
			want: map[string]string{"Cache-Control": "no-store"},
		},
		{
			name: "other paths cacheable", method: http.MethodGet, path: "/api/v1/bootcamps",
			opt:  SecurityOptions{NoStorePrefixes: []string{"/api/v1/auth"}},
			want: map[string]string{"Cache-Control": ""},
		},
		{
			name: "uploads sandboxed", method: http.MethodGet, path: "/uploads/photo_1.png",
			opt: SecurityOptions{UploadPrefixes: []string{"/uploads"}},
			want: map[string]string{
				"Content-Security-Policy":      "default-src 'none'; img-src 'self'; sandbox",
				"Cross-Origin-Resource-Policy": "cross-origin",
				"X-Content-Type-Options":       "nosniff",
			},
		},
		{
			name: "hsts skipped on plain http", method: http.MethodGet, path: "/api/v1/bootcamps",
			opt:  SecurityOptions{EnableHSTS: true},
			want: map[string]string{"Strict-Transport-Security": ""},
		},
		{
			name: "hsts on tls with default max age", method: http.MethodGet, path: "/api/v1/bootcamps",
			opt: SecurityOptions{EnableHSTS: true}, mutate: []func(*http.Request){tlsReq},
			want: map[string]string{"Strict-Transport-Security": "max-age=15552000; includeSubDomains; preload"},
		},
		{
			name: "hsts behind proxy", method: http.MethodGet, path: "/api/v1/bootcamps",
			opt: SecurityOptions{EnableHSTS: true, HSTSMaxAge: time.Hour}, mutate: []func(*http.Request){proxied},
			want: map[string]string{"Strict-Transport-Security": "max-age=3600; includeSubDomains; preload"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := securedGet(securedRouter(tc.opt), tc.method, tc.path, tc.mutate...)
			for k, v := range tc.want {
				assert.Equal(t, v, h.Get(k), k)
			}
		})
	}
}

func Test_isHTTPS(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.False(t, isHTTPS(req))

	req.Header.Set("X-Forwarded-Proto", "https")
	assert.True(t, isHTTPS(req))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.TLS = &tls.ConnectionState{}
	assert.True(t, isHTTPS(req))
}
