package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nvoloshin/userhub/internal/auth"
	"github.com/nvoloshin/userhub/internal/user"
)

// Error represents a structured error response.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes carried in responses. Clients branch on these, so they are
// part of the wire contract and must not change.
const (
	ErrCodeBadRequest         = "bad_request"
	ErrCodeValidation         = "validation_error"
	ErrCodeInternal           = "internal_error"
	ErrCodeIncorrectAuthData  = "incorrect_login_or_password"
	ErrCodeUserInactive       = "user_inactive"
	ErrCodeUserDoesNotExist   = "user_does_not_exists"
	ErrCodeLoginConflict      = "user_with_provided_login_exists"
	ErrCodeEmailConflict      = "user_with_provided_email_exists"
	ErrCodeWrongCredentials   = "wrong_credentials"
	ErrCodeSessionExpired     = "session_expired"
	ErrCodeNotEnoughRights    = "not_enough_right_for_operation"
	ErrCodeUserNotFound       = "user_not_found"
	ErrCodeRoleNotFound       = "role_does_not_exists"
	ErrCodeServiceUnavailable = "service_unavailable"
)

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{
		Status:  status,
		Code:    code,
		Message: message,
	})
}

// writeBadRequest writes a 400 error response.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// writeInternalError writes a 500 error response.
func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}

// writeDomainError maps sentinel errors from the auth and user layers to
// their HTTP status and wire code. Unknown errors become a 500.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrIncorrectCredentials):
		writeError(w, http.StatusBadRequest, ErrCodeIncorrectAuthData, "incorrect login or password")
	case errors.Is(err, user.ErrUserInactive):
		writeError(w, http.StatusBadRequest, ErrCodeUserInactive, "your account is disabled")
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, ErrCodeWrongCredentials, "wrong credentials")
	case errors.Is(err, auth.ErrSessionExpired):
		writeError(w, http.StatusUnauthorized, ErrCodeSessionExpired, "session has expired, log in again")
	case errors.Is(err, auth.ErrNotEnoughRights):
		writeError(w, http.StatusForbidden, ErrCodeNotEnoughRights, "not enough rights for this operation")
	case errors.Is(err, user.ErrUserNotFound):
		writeError(w, http.StatusNotFound, ErrCodeUserNotFound, "user not found")
	case errors.Is(err, user.ErrLoginExists):
		writeError(w, http.StatusConflict, ErrCodeLoginConflict, "a user with this login already exists")
	case errors.Is(err, user.ErrEmailExists):
		writeError(w, http.StatusConflict, ErrCodeEmailConflict, "a user with this email already exists")
	case errors.Is(err, user.ErrRoleNotFound):
		writeError(w, http.StatusBadRequest, ErrCodeRoleNotFound, "role does not exist")
	case errors.Is(err, user.ErrInvalidLogin):
		writeError(w, http.StatusBadRequest, ErrCodeValidation, "login must be 5-255 characters of letters, digits, @, - or _")
	case errors.Is(err, user.ErrInvalidPassword):
		writeError(w, http.StatusBadRequest, ErrCodeValidation, "password must be 5-20 characters of letters, digits, ., - or _")
	case errors.Is(err, auth.ErrBlacklistUnavailable):
		writeError(w, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "session store unavailable")
	default:
		s.logger.Error("unhandled domain error", "error", err)
		writeInternalError(w, "internal server error")
	}
}
