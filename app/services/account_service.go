package services

import (
	"context"
	"errors"

	"github.com/cpbyrne/ostaa/app/models"
	"github.com/cpbyrne/ostaa/app/repositories"
	"github.com/cpbyrne/ostaa/pkg/auth"
	"github.com/cpbyrne/ostaa/pkg/database"
	"github.com/cpbyrne/ostaa/pkg/event"
	"github.com/cpbyrne/ostaa/pkg/metrics"
)

// ErrInvalidCredentials is returned by ChangePassword when the current
// password does not match. Login reports a plain false instead.
var ErrInvalidCredentials = errors.New("invalid credentials")

// EventUserRegistered fires after a successful registration.
const EventUserRegistered = "user.registered"

// AccountService implements registration, login, and credential changes.
type AccountService struct {
	users UserStore
}

func NewAccountService() *AccountService {
	return &AccountService{users: repositories.NewUserRepository()}
}

// NewAccountServiceWith injects an alternative store (tests).
func NewAccountServiceWith(users UserStore) *AccountService {
	return &AccountService{users: users}
}

// Register creates an account with empty listings and purchases. The
// password is hashed before it goes anywhere near the store; a taken
// username surfaces as database.ErrDuplicateKey.
func (s *AccountService) Register(ctx context.Context, username, password string) (models.User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{
		Username:     username,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, &user); err != nil {
		return models.User{}, err
	}

	metrics.UsersRegistered.Inc()
	event.Fire(EventUserRegistered, user)
	return user, nil
}

// Login verifies a username/password pair. An unknown username and a wrong
// password both report (false, nil) — the caller cannot tell them apart,
// which is deliberate. Store failures are returned as errors so they reach
// the client as 5xx rather than masquerading as a failed login.
func (s *AccountService) Login(ctx context.Context, username, password string) (bool, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if database.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return auth.CheckPassword(user.PasswordHash, password), nil
}

// ChangePassword replaces a user's credential after verifying the current
// one.
func (s *AccountService) ChangePassword(ctx context.Context, username, current, next string) error {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(user.PasswordHash, current) {
		return ErrInvalidCredentials
	}

	hash, err := auth.HashPassword(next)
	if err != nil {
		return err
	}
	return s.users.UpdatePasswordHash(ctx, username, hash)
}

// Profile returns the account for username.
func (s *AccountService) Profile(ctx context.Context, username string) (models.User, error) {
	return s.users.FindByUsername(ctx, username)
}
