// Auth HTTP handlers.
//
//   - POST /auth/register  (create account, returns token + cookie)
//   - POST /auth/login     (returns token + cookie)
//   - GET  /auth/me        (current user)
//   - GET  /auth/logout    (clears the cookie)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-bootcamp-backend/internal/http/middleware"
	"github.com/tbourn/go-bootcamp-backend/internal/services"
)

// LoginRequest is the JSON payload for login.
type LoginRequest struct {
	Email    string `json:"email" example:"john@gmail.com"`
	Password string `json:"password" example:"123456"`
}

// Register godoc
// @ID          register
// @Summary     Register a user
// @Description Creates a user (role user or publisher) and returns a session token, also set as the token cookie.
// @Tags        Auth
// @Accept      json
// @Produce     json
// @Param       body  body      services.RegisterInput  true  "Account"
// @Success     200   {object}  handlers.TokenResponse
// @Failure     400   {object}  handlers.ErrorResponse  "Validation error or duplicate email"
// @Router      /auth/register [post]
func (h *Handlers) Register(c *gin.Context) (err error) {
	defer func() { middleware.RecordOperation("auth", "register", err) }()

	var in services.RegisterInput
	if err := c.ShouldBindJSON(&in); err != nil {
		return ErrInvalidBody.Wrap(err)
	}
	_, tok, err := h.auth.Register(c.Request.Context(), in)
	if err != nil {
		return err
	}
	h.sendToken(c, tok)
	return nil
}

// Login godoc
// @ID          login
// @Summary     Log in
// @Tags        Auth
// @Accept      json
// @Produce     json
// @Param       body  body      handlers.LoginRequest  true  "Credentials"
// @Success     200   {object}  handlers.TokenResponse
// @Failure     400   {object}  handlers.ErrorResponse  "Missing email or password"
// @Failure     401   {object}  handlers.ErrorResponse  "Invalid credentials"
// @Router      /auth/login [post]
func (h *Handlers) Login(c *gin.Context) (err error) {
	defer func() { middleware.RecordOperation("auth", "login", err) }()

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return ErrInvalidBody.Wrap(err)
	}
	_, tok, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	h.sendToken(c, tok)
	return nil
}

// Me godoc
// @ID          me
// @Summary     Current user
// @Tags        Auth
// @Produce     json
// @Security    BearerAuth
// @Success     200  {object}  handlers.Envelope{data=domain.User}
// @Failure     401  {object}  handlers.ErrorResponse  "Not authenticated"
// @Router      /auth/me [get]
func (h *Handlers) Me(c *gin.Context) error {
	u, err := h.auth.Me(c.Request.Context(), middleware.ActorFrom(c).ID)
	if err != nil {
		return err
	}
	ok(c, http.StatusOK, u)
	return nil
}

// Logout godoc
// @ID          logout
// @Summary     Log out
// @Description Overwrites the token cookie so it expires in 10 seconds.
// @Tags        Auth
// @Produce     json
// @Success     200  {object}  handlers.Envelope
// @Router      /auth/logout [get]
func (h *Handlers) Logout(c *gin.Context) error {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, "none", 10, "/", "", h.opts.SecureCookie, true)
	ok(c, http.StatusOK, empty{})
	return nil
}

func (h *Handlers) sendToken(c *gin.Context, tok string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, tok, int(h.opts.CookieTTL.Seconds()), "/", "", h.opts.SecureCookie, true)
	c.JSON(http.StatusOK, TokenResponse{Success: true, Token: tok})
}
