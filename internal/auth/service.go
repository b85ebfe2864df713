package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/nvoloshin/userhub/internal/infrastructure/logging"
	"github.com/nvoloshin/userhub/internal/user"
)

// Directory is the slice of the user service the auth layer needs.
// Satisfied by *user.Service.
type Directory interface {
	GetByLogin(ctx context.Context, login string) (*user.User, error)
	GetAny(ctx context.Context, id int64) (*user.User, error)
	Permissions(ctx context.Context, userID int64) ([]string, error)
}

// Identity is an authenticated caller: the account plus its resolved
// permission set.
type Identity struct {
	User        *user.User `json:"user"`
	Permissions []string   `json:"permissions"`
}

// Service implements login, token refresh, logout, and token validation.
type Service struct {
	codec   *Codec
	revoked RevocationStore
	users   Directory
	logger  *logging.Logger
}

// NewService creates the auth service.
func NewService(codec *Codec, revoked RevocationStore, users Directory, logger *logging.Logger) *Service {
	return &Service{
		codec:   codec,
		revoked: revoked,
		users:   users,
		logger:  logger.With("component", "auth"),
	}
}

// Login verifies a login/password pair and issues a fresh token pair.
// An unknown login and a wrong password are indistinguishable to the
// caller; an inactive account is reported as such only after the password
// checks out.
func (s *Service) Login(ctx context.Context, login, password string) (*TokenPair, error) {
	u, err := s.users.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, ErrIncorrectCredentials
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	ok, err := user.VerifyPassword(password, u.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verifying password: %w", err)
	}
	if !ok {
		return nil, ErrIncorrectCredentials
	}

	if !u.IsActive {
		return nil, user.ErrUserInactive
	}

	pair, err := s.codec.IssuePair(u.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user logged in", "user_id", u.ID, "login", u.Login)
	return pair, nil
}

// Authenticate validates a token of the expected kind and resolves the
// account behind it. The checks run in a fixed order: revocation first,
// then signature and expiry, then kind, then account existence and the
// active flag.
func (s *Service) Authenticate(ctx context.Context, token string, kind TokenKind) (*user.User, *Claims, error) {
	banned, err := s.revoked.IsRevoked(ctx, token)
	if err != nil {
		return nil, nil, err
	}
	if banned {
		return nil, nil, ErrSessionExpired
	}

	claims, err := s.codec.Parse(token)
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			return nil, nil, ErrSessionExpired
		}
		return nil, nil, ErrInvalidCredentials
	}

	if claims.Kind != kind {
		return nil, nil, ErrInvalidCredentials
	}

	u, err := s.users.GetAny(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("resolving token user: %w", err)
	}

	if !u.IsActive {
		return nil, nil, user.ErrUserInactive
	}

	return u, claims, nil
}

// CurrentUser resolves an access token into the caller's identity,
// including the permission set granted through their role.
func (s *Service) CurrentUser(ctx context.Context, accessToken string) (*Identity, error) {
	u, _, err := s.Authenticate(ctx, accessToken, TokenAccess)
	if err != nil {
		return nil, err
	}

	perms, err := s.users.Permissions(ctx, u.ID)
	if err != nil {
		return nil, fmt.Errorf("resolving permissions: %w", err)
	}

	return &Identity{User: u, Permissions: perms}, nil
}

// Refresh exchanges a valid refresh token for a fresh pair. The presented
// refresh token is revoked in the same call, so each refresh token works
// exactly once.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	u, claims, err := s.Authenticate(ctx, refreshToken, TokenRefresh)
	if err != nil {
		return nil, err
	}

	if err := s.revoked.Revoke(ctx, refreshToken, claims.ExpiresAt.Time); err != nil {
		return nil, err
	}

	pair, err := s.codec.IssuePair(u.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("session refreshed", "user_id", u.ID)
	return pair, nil
}

// Logout revokes an access token. Logging out twice with the same token
// succeeds both times, and a token that has already expired needs no ban
// at all.
func (s *Service) Logout(ctx context.Context, accessToken string) error {
	claims, err := s.codec.Parse(accessToken)
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			return nil
		}
		return ErrInvalidCredentials
	}

	if claims.Kind != TokenAccess {
		return ErrInvalidCredentials
	}

	if err := s.revoked.Revoke(ctx, accessToken, claims.ExpiresAt.Time); err != nil {
		return err
	}

	s.logger.Info("user logged out", "user_id", claims.UserID)
	return nil
}
