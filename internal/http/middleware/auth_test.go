package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tbourn/go-bootcamp-backend/internal/auth"
	"github.com/tbourn/go-bootcamp-backend/internal/domain"
)

func authRouter(tokens *auth.Tokens) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(renderErrors())
	r.Use(Authenticate(tokens))
	r.GET("/whoami", func(c *gin.Context) {
		a := ActorFrom(c)
		c.JSON(http.StatusOK, gin.H{"id": a.ID, "role": a.Role})
	})
	r.POST("/publish", Protect(), Authorize(domain.RolePublisher, domain.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})
	return r
}

func TestAuthenticate_HeaderCookieAndAnonymous(t *testing.T) {
	tokens := auth.NewTokens("secret", time.Hour)
	tok, err := tokens.Issue("u1", domain.RolePublisher)
	require.NoError(t, err)
	r := authRouter(tokens)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	r.ServeHTTP(w, req)
	assert.JSONEq(t, `{"id":"u1","role":"publisher"}`, w.Body.String())

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookie, Value: tok})
	r.ServeHTTP(w, req)
	assert.JSONEq(t, `{"id":"u1","role":"publisher"}`, w.Body.String())

	// Invalid token and logged-out cookie are anonymous, not errors.
	for _, set := range []func(*http.Request){
		func(r *http.Request) { r.Header.Set("Authorization", "Bearer garbage") },
		func(r *http.Request) { r.AddCookie(&http.Cookie{Name: TokenCookie, Value: "none"}) },
		func(*http.Request) {},
	} {
		w = httptest.NewRecorder()
		req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
		set(req)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"id":"","role":""}`, w.Body.String())
	}
}

func TestProtectAndAuthorize(t *testing.T) {
	tokens := auth.NewTokens("secret", time.Hour)
	r := authRouter(tokens)

	call := func(role string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/publish", nil)
		if role != "" {
			tok, err := tokens.Issue("u-"+role, role)
			require.NoError(t, err)
			req.Header.Set("Authorization", "bearer "+tok)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := call("")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Not authorized to access this route")

	w = call(domain.RoleUser)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "User role user is not authorized to access this route")

	assert.Equal(t, http.StatusCreated, call(domain.RolePublisher).Code)
	assert.Equal(t, http.StatusCreated, call(domain.RoleAdmin).Code)
}
