package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sysocial/sysocial-backend/internal/apperror"
	"github.com/sysocial/sysocial-backend/internal/model"
	"github.com/sysocial/sysocial-backend/internal/response"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned when login and password do not match.
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserStore is the persistence contract of UserService. Create and Update
// must report natural-key collisions as *apperror.ConflictError.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id int) (*model.User, error)
	GetByLogin(ctx context.Context, login string) (*model.User, error)
	List(ctx context.Context, limit, offset int) ([]model.User, int, error)
	Update(ctx context.Context, u *model.User) error
	Delete(ctx context.Context, id int) error
}

// UserService handles user accounts.
type UserService struct {
	store      UserStore
	bcryptCost int
}

// NewUserService creates a new UserService.
func NewUserService(store UserStore, bcryptCost int) *UserService {
	if bcryptCost < bcrypt.MinCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &UserService{store: store, bcryptCost: bcryptCost}
}

// Create hashes the password and inserts the user. There is no existence
// pre-check; duplicates surface from the store as ConflictError.
func (s *UserService) Create(ctx context.Context, req *model.CreateUserRequest) (*model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &model.User{
		Username:           req.Username,
		Name:               req.Name,
		Phone:              optional(req.Phone),
		Email:              normalizeEmail(req.Email),
		PasswordHash:       string(hash),
		Type:               req.Type,
		MustChangePassword: req.MustChangePassword,
	}
	if err := s.store.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// GetByID retrieves a user.
func (s *UserService) GetByID(ctx context.Context, id int) (*model.User, error) {
	return s.store.GetByID(ctx, id)
}

// List returns one page of users.
func (s *UserService) List(ctx context.Context, page, perPage int) ([]model.User, *response.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	if perPage > 100 {
		perPage = 100
	}

	users, total, err := s.store.List(ctx, perPage, (page-1)*perPage)
	if err != nil {
		return nil, nil, err
	}
	return users, response.NewPagination(page, perPage, total), nil
}

// Update replaces a user's profile. The password changes only when one is
// supplied.
func (s *UserService) Update(ctx context.Context, id int, req *model.UpdateUserRequest) (*model.User, error) {
	u := &model.User{
		ID:                 id,
		Username:           req.Username,
		Name:               req.Name,
		Phone:              optional(req.Phone),
		Email:              normalizeEmail(req.Email),
		Type:               req.Type,
		MustChangePassword: req.MustChangePassword,
	}
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		u.PasswordHash = string(hash)
	}
	if err := s.store.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Delete removes a user.
func (s *UserService) Delete(ctx context.Context, id int) error {
	return s.store.Delete(ctx, id)
}

// Authenticate checks a username-or-email and password pair.
func (s *UserService) Authenticate(ctx context.Context, login, password string) (*model.User, error) {
	u, err := s.store.GetByLogin(ctx, strings.TrimSpace(login))
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
