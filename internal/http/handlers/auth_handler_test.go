package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tbourn/go-bootcamp-backend/internal/domain"
	"github.com/tbourn/go-bootcamp-backend/internal/http/middleware"
	"github.com/tbourn/go-bootcamp-backend/internal/services"
)

func tokenCookie(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()
	for _, ck := range resp.Cookies() {
		if ck.Name == middleware.TokenCookie {
			return ck
		}
	}
	t.Fatalf("no %s cookie in %v", middleware.TokenCookie, resp.Header.Values("Set-Cookie"))
	return nil
}

func TestRegisterAndLogin_SendToken(t *testing.T) {
	var gotIn services.RegisterInput
	h := New(nil, nil, stubAuth{
		register: func(_ context.Context, in services.RegisterInput) (*domain.User, string, error) {
			gotIn = in
			return &domain.User{ID: publisherID}, "tok-register", nil
		},
		login: func(_ context.Context, email, pw string) (*domain.User, string, error) {
			if pw != "123456" {
				return nil, "", services.ErrInvalidCredentials
			}
			return &domain.User{ID: publisherID, Email: email}, "tok-login", nil
		},
	}, nil, Options{CookieTTL: 2 * time.Hour, SecureCookie: true})
	r := newTestRouter(h)

	w := do(r, http.MethodPost, "/auth/register", map[string]any{"name": "Jo", "email": "jo@x.io", "password": "123456", "role": "publisher"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"success":true,"token":"tok-register"}`, w.Body.String())
	assert.Equal(t, services.RegisterInput{Name: "Jo", Email: "jo@x.io", Password: "123456", Role: "publisher"}, gotIn)

	ck := tokenCookie(t, w.Result())
	assert.Equal(t, "tok-register", ck.Value)
	assert.Equal(t, 7200, ck.MaxAge)
	assert.True(t, ck.HttpOnly)
	assert.True(t, ck.Secure)
	assert.Equal(t, http.SameSiteLaxMode, ck.SameSite)

	w = do(r, http.MethodPost, "/auth/login", map[string]any{"email": "jo@x.io", "password": "123456"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "tok-login", tokenCookie(t, w.Result()).Value)

	w = do(r, http.MethodPost, "/auth/login", map[string]any{"email": "jo@x.io", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid credentials", decode(t, w).Error)
	assert.Empty(t, w.Result().Cookies())

	w = do(r, http.MethodPost, "/auth/login", "not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMe(t *testing.T) {
	h := New(nil, nil, stubAuth{
		me: func(_ context.Context, id string) (*domain.User, error) {
			return &domain.User{ID: id, Name: "Jo", Role: domain.RoleUser}, nil
		},
	}, nil, Options{})
	r := newTestRouter(h)

	w := do(r, http.MethodGet, "/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req, _ := http.NewRequest(http.MethodGet, "/auth/me", nil)
	tok, err := testTokens.Issue(publisherID, domain.RoleUser)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: middleware.TokenCookie, Value: tok})
	rec := serve(r, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"id":"`+publisherID+`"`)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestLogout_ClearsCookie(t *testing.T) {
	r := newTestRouter(New(nil, nil, stubAuth{}, nil, Options{}))

	w := do(r, http.MethodGet, "/auth/logout", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"data":{}}`, w.Body.String())
	ck := tokenCookie(t, w.Result())
	assert.Equal(t, "none", ck.Value)
	assert.Equal(t, 10, ck.MaxAge)
	assert.True(t, ck.HttpOnly)
}
