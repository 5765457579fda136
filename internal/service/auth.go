// Package service holds the business logic: authentication, catalog
// queries and favorites.
//
// AuthService sits between the HTTP handlers and the credential store:
//
//	AuthHandler (HTTP) → AuthService (business rules) → UserRepository (DB)
//	                   ↘ TokenService (JWT), PasswordService (bcrypt)
//
// KEY RESPONSIBILITIES:
//   - Register and log in with email + password, issuing an access token
//   - Turn a token back into a live user (Authenticate) for the middleware
//   - Keep password hashes inside this layer: every user handed out is sanitized
//
// ERRORS:
// Every credential or token problem is apperror.ErrUnauthorized with a
// deliberately vague message. Login in particular never says whether it was
// the email or the password that was wrong.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/sakif/pokedex-api/internal/apperror"
	"github.com/sakif/pokedex-api/internal/auth"
	"github.com/sakif/pokedex-api/internal/model"
	"github.com/sakif/pokedex-api/internal/repository"
)

// MaxEmailLength bounds the email column; anything longer is not a real address.
const MaxEmailLength = 254

// AuthService handles the authentication business logic.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger

	// dummyHash is compared against on logins for unknown emails so that
	// path costs one bcrypt comparison too.
	dummyOnce sync.Once
	dummyHash string
}

// compile-time check that *AuthService satisfies the middleware's resolver
var _ auth.IdentityResolver = (*AuthService)(nil)

// NewAuthService creates an AuthService with all required dependencies.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// AuthResult bundles the sanitized user and a freshly issued access token.
type AuthResult struct {
	User        *model.User `json:"user"`
	AccessToken string      `json:"accessToken"`
}

// Register creates an account and logs it in.
//
// Duplicate emails are rejected with apperror.ErrConflict. The lookup below
// catches the common case with a clean message; two registrations racing
// for the same email are settled by the store's UNIQUE constraint, which
// reports the same error.
func (s *AuthService) Register(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(email)
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}

	_, err := s.users.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, apperror.Conflict("user", email)
	case !errors.Is(err, apperror.ErrNotFound):
		return nil, fmt.Errorf("service/auth: checking email: %w", err)
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &model.User{Email: email, PasswordHash: hash}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("service/auth: creating user: %w", err)
	}

	s.logger.Info("user registered", slog.String("userID", user.ID))

	return s.issue(user)
}

// Login verifies email + password and issues a token.
//
// An unknown email and a wrong password produce the same error, and both
// run one bcrypt comparison, so neither the response nor its timing tells a
// caller which emails are registered.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(email)

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			s.passwords.Verify(password, s.dummy())
			return nil, invalidCredentials()
		}
		return nil, fmt.Errorf("service/auth: looking up user: %w", err)
	}

	if !s.passwords.Verify(password, user.PasswordHash) {
		return nil, invalidCredentials()
	}

	s.logger.Info("user logged in", slog.String("userID", user.ID))

	return s.issue(user)
}

// ResolveIdentity returns the sanitized user for userID, or ErrUnauthorized
// if the account no longer exists.
func (s *AuthService) ResolveIdentity(ctx context.Context, userID string) (*model.User, error) {
	if userID == "" {
		return nil, apperror.Unauthorized("valid authentication required")
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized("valid authentication required")
		}
		return nil, fmt.Errorf("service/auth: resolving user %s: %w", userID, err)
	}

	return user.Sanitized(), nil
}

// Authenticate validates a bearer token and resolves the user it names.
// It implements auth.IdentityResolver.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	userID, err := s.tokens.Validate(token)
	if err != nil {
		s.logger.Debug("token rejected", slog.String("reason", err.Error()))
		return nil, apperror.Unauthorized("valid authentication required")
	}
	return s.ResolveIdentity(ctx, userID)
}

func (s *AuthService) issue(user *model.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: issuing token for user %s: %w", user.ID, err)
	}
	return &AuthResult{User: user.Sanitized(), AccessToken: token}, nil
}

func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		h, err := s.passwords.Hash("timing-equalizer")
		if err != nil {
			s.logger.Error("computing dummy hash", slog.String("error", err.Error()))
			return
		}
		s.dummyHash = h
	})
	return s.dummyHash
}

func invalidCredentials() error {
	return apperror.Unauthorized("invalid email or password")
}

func validateCredentials(email, password string) error {
	if email == "" {
		return apperror.ValidationFailed("email", "email is required")
	}
	if len(email) > MaxEmailLength {
		return apperror.ValidationFailed("email",
			fmt.Sprintf("email must be %d characters or less", MaxEmailLength))
	}
	if at := strings.LastIndexByte(email, '@'); at <= 0 || at == len(email)-1 {
		return apperror.ValidationFailed("email", "email must be a valid address")
	}
	if password == "" {
		return apperror.ValidationFailed("password", "password is required")
	}
	if len(password) > auth.MaxPasswordBytes {
		return apperror.ValidationFailed("password",
			fmt.Sprintf("password must be %d bytes or fewer", auth.MaxPasswordBytes))
	}
	return nil
}
