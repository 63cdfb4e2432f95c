// Package user holds account entities and the registration/login service.
package user

import (
	"context"
	"time"

	"github.com/kangsive/ai-chat-bot/internal/utils/idgen"
)

// User is one account. PasswordHash is the salted hash produced by the
// configured hasher, never the raw password.
type User struct {
	ID           uint
	PublicID     string
	Email        string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewUser creates an active account with the given credentials.
func NewUser(email, passwordHash string) (*User, error) {
	publicID, err := idgen.GenerateSecureID("user", 16)
	if err != nil {
		return nil, err
	}
	return &User{
		PublicID:     publicID,
		Email:        email,
		PasswordHash: passwordHash,
		IsActive:     true,
	}, nil
}

// UserRepository is the persistence boundary for accounts.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id uint) (*User, error)
	FindByPublicID(ctx context.Context, publicID string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, user *User) error
}
