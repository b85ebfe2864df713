package auth

import "errors"

// Sentinel errors for auth operations.
var (
	ErrIncorrectCredentials = errors.New("incorrect login or password")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrSessionExpired       = errors.New("session expired")
	ErrNotEnoughRights      = errors.New("not enough rights for operation")
	ErrTokenExpired         = errors.New("token has expired")
	ErrTokenInvalid         = errors.New("invalid token")
	ErrBlacklistUnavailable = errors.New("token blacklist unavailable")
)
