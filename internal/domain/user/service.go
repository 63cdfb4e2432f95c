package user

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/kangsive/ai-chat-bot/internal/utils/platformerrors"
)

const minPasswordLen = 8

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) string
	Verify(password, hash string) bool
}

// TokenIssuer mints bearer tokens for authenticated users.
type TokenIssuer interface {
	Issue(ctx context.Context, u *User) (token string, expiresAt time.Time, err error)
}

// Service handles registration and login.
type Service struct {
	users  UserRepository
	hasher PasswordHasher
	tokens TokenIssuer
	log    zerolog.Logger
}

// NewService wires the user service.
func NewService(users UserRepository, hasher PasswordHasher, tokens TokenIssuer, log zerolog.Logger) *Service {
	return &Service{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		log:    log.With().Str("component", "user-service").Logger(),
	}
}

// Register creates an account. Duplicate emails surface as conflicts.
func (s *Service) Register(ctx context.Context, email, password string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"invalid email address", err, "4b566f86-0c67-45c4-8896-9f0b4d7af823")
	}
	if len(password) < minPasswordLen {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"password must be at least 8 characters", nil, "fff9faed-7d80-4353-b570-13c13d33cb9a")
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeConflict,
			"an account with this email already exists", nil, "300865dc-eeb9-4e96-aa88-e0a6dd106d41")
	} else if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
		return nil, err
	}

	u, err := NewUser(email, s.hasher.Hash(password))
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInternal,
			"unable to generate user id", err, "f180b85a-3acf-4554-8b52-2edc277cea45")
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	s.log.Info().Str("user_id", u.PublicID).Msg("account registered")
	return u, nil
}

// ProfileUpdate carries the optional profile fields of an update. Nil
// fields keep their current value.
type ProfileUpdate struct {
	Email    *string
	Password *string
}

// UpdateProfile changes the account's email or password. A new email must
// not belong to another account.
func (s *Service) UpdateProfile(ctx context.Context, id uint, update ProfileUpdate) (*User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*update.Email))
		if _, err := mail.ParseAddress(email); err != nil {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
				"invalid email address", err, "faf52367-8c4f-4c7c-bb05-4d7f409c9122")
		}
		if email != u.Email {
			if other, findErr := s.users.FindByEmail(ctx, email); findErr == nil && other.ID != u.ID {
				return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeConflict,
					"an account with this email already exists", nil, "d9a54e41-1a6a-4658-b47c-9291de34ddef")
			} else if findErr != nil && !platformerrors.IsErrorType(findErr, platformerrors.ErrorTypeNotFound) {
				return nil, findErr
			}
			u.Email = email
		}
	}

	if update.Password != nil {
		if len(*update.Password) < minPasswordLen {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
				"password must be at least 8 characters", nil, "5a3e087e-0ee3-42a6-923e-8655fa9100d8")
		}
		u.PasswordHash = s.hasher.Hash(*update.Password)
	}

	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	s.log.Info().Str("user_id", u.PublicID).Msg("profile updated")
	return u, nil
}

// Login verifies credentials and issues a bearer token. Wrong email and
// wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*User, string, time.Time, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	unauthorized := func() error {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeUnauthorized,
			"invalid email or password", nil, "a31cd1a3-3af3-4c87-b9f7-409ac9dbf9eb")
	}

	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
			return nil, "", time.Time{}, unauthorized()
		}
		return nil, "", time.Time{}, err
	}
	if !u.IsActive || !s.hasher.Verify(password, u.PasswordHash) {
		return nil, "", time.Time{}, unauthorized()
	}

	token, expiresAt, err := s.tokens.Issue(ctx, u)
	if err != nil {
		return nil, "", time.Time{}, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInternal,
			"unable to issue token", err, "4863c96e-3896-4eb8-87cd-b3bcc5819c16")
	}
	return u, token, expiresAt, nil
}
