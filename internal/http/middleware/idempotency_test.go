package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lookupCall struct {
	userID, scope, key string
}

// idemRouter mounts the validator on POST and GET /api/v1/bootcamps. The
// handler echoes what the validator stored on the context.
func idemRouter(uid string, opts IdempotencyOptions, lookup IdempotencyLookup) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(renderErrors())
	if uid != "" {
		r.Use(func(c *gin.Context) { c.Set(ctxKeyUserID, uid); c.Next() })
	}
	r.Use(IdempotencyValidator(opts, lookup))
	echo := func(c *gin.Context) {
		key, ok := GetIdempotencyKey(c)
		c.JSON(http.StatusOK, gin.H{
			"key":    key,
			"has":    ok,
			"replay": IsReplay(c),
			"bypass": IsRateBypass(c),
			"scope":  IdempotencyScope(c),
		})
	}
	r.POST("/api/v1/bootcamps", echo)
	r.GET("/api/v1/bootcamps", echo)
	return r
}

func sendKey(r http.Handler, method, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/api/v1/bootcamps", nil)
	if key != "" {
		req.Header.Set(HeaderIdempotencyKey, key)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeMap(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m), w.Body.String())
	return m
}

func TestIdempotencyScope_FallsBackToRawPath(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodDelete, "/api/v1/courses/abc", nil)
	assert.Equal(t, "DELETE /api/v1/courses/abc", IdempotencyScope(c))
}

func TestIdempotencyValidator_Keys(t *testing.T) {
	custom := IdempotencyOptions{MaxLen: 8, Pattern: regexp.MustCompile(`^[a-z]+$`)}

	cases := []struct {
		name     string
		opts     IdempotencyOptions
		method   string
		key      string
		wantCode int
		wantKey  string
	}{
		{name: "no header", method: http.MethodPost, wantCode: http.StatusOK},
		{name: "accepted", method: http.MethodPost, key: "order-42:v1", wantCode: http.StatusOK, wantKey: "order-42:v1"},
		{name: "spaces rejected", method: http.MethodPost, key: "has spaces", wantCode: http.StatusBadRequest},
		{name: "too long", method: http.MethodPost, key: strings.Repeat("a", 201), wantCode: http.StatusBadRequest},
		{name: "max length ok", method: http.MethodPost, key: strings.Repeat("a", 200), wantCode: http.StatusOK, wantKey: strings.Repeat("a", 200)},
		{name: "custom pattern", opts: custom, method: http.MethodPost, key: "abc1", wantCode: http.StatusBadRequest},
		{name: "custom max len", opts: custom, method: http.MethodPost, key: "abcdefghi", wantCode: http.StatusBadRequest},
		{name: "safe method ignores header", method: http.MethodGet, key: "has spaces", wantCode: http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := sendKey(idemRouter("", tc.opts, nil), tc.method, tc.key)
			require.Equal(t, tc.wantCode, w.Code, w.Body.String())

			body := decodeMap(t, w)
			if tc.wantCode == http.StatusBadRequest {
				assert.Equal(t, "bad_idempotency_key", body["code"])
				assert.Equal(t, "Invalid Idempotency-Key", body["error"])
				return
			}
			assert.Equal(t, tc.wantKey, body["key"])
			assert.Equal(t, tc.wantKey != "", body["has"])
			assert.Equal(t, false, body["replay"])
		})
	}
}

func TestIdempotencyValidator_Lookup(t *testing.T) {
	t.Run("anonymous skips lookup", func(t *testing.T) {
		called := false
		lookup := func(context.Context, string, string, string, time.Time) (bool, error) {
			called = true
			return true, nil
		}
		w := sendKey(idemRouter("", IdempotencyOptions{}, lookup), http.MethodPost, "k1")
		require.Equal(t, http.StatusOK, w.Code)
		assert.False(t, called)
		assert.Equal(t, false, decodeMap(t, w)["replay"])
	})

	t.Run("miss then hit", func(t *testing.T) {
		var calls []lookupCall
		stored := map[string]bool{}
		lookup := func(_ context.Context, uid, scope, key string, now time.Time) (bool, error) {
			assert.False(t, now.IsZero())
			calls = append(calls, lookupCall{uid, scope, key})
			return stored[uid+"|"+scope+"|"+key], nil
		}
		r := idemRouter("u9", IdempotencyOptions{}, lookup)

		miss := decodeMap(t, sendKey(r, http.MethodPost, "k1"))
		assert.Equal(t, false, miss["replay"])
		assert.Equal(t, false, miss["bypass"])

		stored["u9|POST /api/v1/bootcamps|k1"] = true
		hit := decodeMap(t, sendKey(r, http.MethodPost, "k1"))
		assert.Equal(t, true, hit["replay"])
		assert.Equal(t, true, hit["bypass"])
		assert.Equal(t, "POST /api/v1/bootcamps", hit["scope"])

		require.Len(t, calls, 2)
		assert.Equal(t, lookupCall{"u9", "POST /api/v1/bootcamps", "k1"}, calls[1])
	})

	t.Run("failure is logged and treated as miss", func(t *testing.T) {
		buf := captureLogger(t)
		lookup := func(context.Context, string, string, string, time.Time) (bool, error) {
			return false, errSentinel{}
		}
		w := sendKey(idemRouter("u9", IdempotencyOptions{}, lookup), http.MethodPost, "k2")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, false, decodeMap(t, w)["replay"])
		assert.Contains(t, buf.String(), "idempotency lookup failed")
		assert.Contains(t, buf.String(), "boom")
	})
}
