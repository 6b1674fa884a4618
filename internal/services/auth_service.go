package services

import (
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/tbourn/go-bootcamp-backend/internal/auth"
	"github.com/tbourn/go-bootcamp-backend/internal/domain"
)

// MinPasswordLen is the shortest accepted password.
const MinPasswordLen = 6

// RegisterInput is the self-registration payload. Role defaults to user;
// admin cannot be requested.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// AuthService registers users and issues session tokens.
type AuthService struct {
	Users  UserStore
	Tokens *auth.Tokens
}

// Register creates an account and returns it with a session token.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, string, error) {
	ctx, span := otel.Tracer("services/AuthService").Start(ctx, "Register")
	defer span.End()

	role := strings.ToLower(strings.TrimSpace(in.Role))
	switch role {
	case "":
		role = domain.RoleUser
	case domain.RoleUser, domain.RolePublisher:
	default:
		return nil, "", ErrRoleNotAllowed
	}

	u := &domain.User{
		Name:  strings.TrimSpace(in.Name),
		Email: strings.ToLower(strings.TrimSpace(in.Email)),
		Role:  role,
	}
	if err := domain.Validate(u); err != nil {
		return nil, "", err
	}
	if len(in.Password) < MinPasswordLen {
		return nil, "", ErrWeakPassword
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, "", err
	}
	u.Password = hash

	if err := s.Users.CreateUser(ctx, u); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, "", ErrEmailTaken.Wrap(err)
		}
		return nil, "", err
	}
	span.SetAttributes(attribute.String("user.id", u.ID))

	tok, err := s.Tokens.Issue(u.ID, u.Role)
	if err != nil {
		return nil, "", err
	}
	return u, tok, nil
}

// Login checks credentials and returns a session token. Unknown emails and
// wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	ctx, span := otel.Tracer("services/AuthService").Start(ctx, "Login")
	defer span.End()

	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, "", ErrMissingCredentials
	}
	u, err := s.Users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if !auth.CheckPassword(u.Password, password) {
		return nil, "", ErrInvalidCredentials
	}
	tok, err := s.Tokens.Issue(u.ID, u.Role)
	if err != nil {
		return nil, "", err
	}
	return u, tok, nil
}

// Me returns the account of the authenticated user.
func (s *AuthService) Me(ctx context.Context, userID string) (*domain.User, error) {
	u, err := s.Users.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidCredentials.Wrap(err)
		}
		return nil, err
	}
	return u, nil
}
