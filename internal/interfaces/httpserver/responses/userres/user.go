package userres

import (
	"time"

	"github.com/kangsive/ai-chat-bot/internal/domain/user"
)

type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthResponse carries a freshly issued bearer token.
type AuthResponse struct {
	User        *UserResponse `json:"user"`
	AccessToken string        `json:"access_token"`
	TokenType   string        `json:"token_type"`
	ExpiresAt   time.Time     `json:"expires_at"`
}

func NewUserResponse(u *user.User) *UserResponse {
	return &UserResponse{
		ID:        u.PublicID,
		Email:     u.Email,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

func NewAuthResponse(u *user.User, token string, expiresAt time.Time) *AuthResponse {
	return &AuthResponse{
		User:        NewUserResponse(u),
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
	}
}
