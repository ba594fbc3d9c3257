package service

import (
	"context"

	"github.com/sysocial/sysocial-backend/internal/model"
)

// AuthService handles registration and login on top of UserService.
type AuthService struct {
	users  *UserService
	tokens *TokenService
}

// NewAuthService creates a new AuthService.
func NewAuthService(users *UserService, tokens *TokenService) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

// Register creates the account and signs a token for it.
func (s *AuthService) Register(ctx context.Context, req *model.CreateUserRequest) (*model.AuthResponse, error) {
	u, err := s.users.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.respond(u)
}

// Login verifies credentials and signs a token.
func (s *AuthService) Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error) {
	u, err := s.users.Authenticate(ctx, req.Identifier(), req.Password)
	if err != nil {
		return nil, err
	}
	return s.respond(u)
}

// Validate returns the claims of a bearer token.
func (s *AuthService) Validate(token string) (*Claims, error) {
	return s.tokens.Validate(token)
}

func (s *AuthService) respond(u *model.User) (*model.AuthResponse, error) {
	token, expiresAt, err := s.tokens.Issue(u)
	if err != nil {
		return nil, err
	}
	return &model.AuthResponse{Token: token, ExpiresAt: expiresAt, User: u}, nil
}
