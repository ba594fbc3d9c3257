package model

import "time"

// UserType is the account category stored in users.tipo.
type UserType string

const (
	UserTypeAdmin     UserType = "A"
	UserTypeRegular   UserType = "U"
	UserTypeProfessor UserType = "P"
)

// Valid reports whether t is one of the known account categories.
func (t UserType) Valid() bool {
	switch t {
	case UserTypeAdmin, UserTypeRegular, UserTypeProfessor:
		return true
	}
	return false
}

// User represents an account shared by the auth and user services.
type User struct {
	ID                 int       `json:"id"`
	Username           string    `json:"username"`
	Name               string    `json:"nome"`
	Phone              *string   `json:"telefone,omitempty"`
	Email              string    `json:"email"`
	PasswordHash       string    `json:"-"`
	Type               UserType  `json:"tipo"`
	MustChangePassword bool      `json:"troca_senha"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// CreateUserRequest is the payload for registration and for POST /users.
type CreateUserRequest struct {
	Username           string   `json:"username" binding:"required,min=3,max=20"`
	Name               string   `json:"nome" binding:"required,min=2,max=50"`
	Phone              string   `json:"telefone" binding:"omitempty,min=10,max=15"`
	Email              string   `json:"email" binding:"required,email,max=255"`
	Password           string   `json:"senha" binding:"required,min=6,maxbytes=72"`
	Type               UserType `json:"tipo" binding:"required,usertype"`
	MustChangePassword bool     `json:"troca_senha"`
}

// UpdateUserRequest is the payload for PUT /users/:id. An empty password
// keeps the current one.
type UpdateUserRequest struct {
	Username           string   `json:"username" binding:"required,min=3,max=20"`
	Name               string   `json:"nome" binding:"required,min=2,max=50"`
	Phone              string   `json:"telefone" binding:"omitempty,min=10,max=15"`
	Email              string   `json:"email" binding:"required,email,max=255"`
	Password           string   `json:"senha" binding:"omitempty,min=6,maxbytes=72"`
	Type               UserType `json:"tipo" binding:"required,usertype"`
	MustChangePassword bool     `json:"troca_senha"`
}

// LoginRequest authenticates by username or email. Login is accepted as an
// alias holding either one.
type LoginRequest struct {
	Username string `json:"username" binding:"required_without_all=Email Login,max=255"`
	Email    string `json:"email" binding:"max=255"`
	Login    string `json:"login" binding:"max=255"`
	Password string `json:"senha" binding:"required,maxbytes=72"`
}

// Identifier returns the first of username, email and login that is set.
func (r *LoginRequest) Identifier() string {
	for _, v := range []string{r.Username, r.Email, r.Login} {
		if v != "" {
			return v
		}
	}
	return ""
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      *User     `json:"user"`
}
