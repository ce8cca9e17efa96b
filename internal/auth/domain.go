package auth

import (
	"time"

	"github.com/yashng7/zero-grid/internal/users"
)

// Tokens is the access/refresh pair handed to clients as cookies.
type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Result is returned by flows that authenticate a user.
type Result struct {
	User   *users.User `json:"user"`
	Tokens Tokens      `json:"tokens"`
}

// ResetToken is a single-use password reset credential.
type ResetToken struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

// Valid reports whether the token is unused and unexpired at now.
func (t *ResetToken) Valid(now time.Time) bool {
	return t != nil && t.UsedAt == nil && t.ExpiresAt.After(now)
}

// ResetTokenWithUser pairs a valid token with its owner.
type ResetTokenWithUser struct {
	Token ResetToken
	User  users.User
}

// RegisterInput carries a registration request.
type RegisterInput struct {
	Email    string `json:"email" validate:"required,address"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name" validate:"required,min=2"`
}

// LoginInput carries a login request.
type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ForgotPasswordInput carries a reset link request.
type ForgotPasswordInput struct {
	Email string `json:"email" validate:"required,address"`
}

// ResetPasswordInput carries a password reset.
type ResetPasswordInput struct {
	Token           string `json:"token" validate:"required"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"eqfield=Password"`
}
