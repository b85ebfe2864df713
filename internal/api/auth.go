package api

import (
	"encoding/json"
	"net/http"
)

// refreshRequest is the request body for POST /auth/refresh.
type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// handleLogin authenticates a login/password pair and returns a token pair.
// Credentials arrive as a form body (username, password).
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeBadRequest(w, "invalid form body")
		return
	}

	login := r.PostFormValue("username")
	password := r.PostFormValue("password")
	if login == "" || password == "" {
		writeBadRequest(w, "username and password are required")
		return
	}

	pair, err := s.auth.Login(r.Context(), login, password)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, pair)
}

// handleRefresh exchanges a refresh token for a fresh token pair. The
// presented token is revoked, so it cannot be replayed.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.RefreshToken == "" {
		writeBadRequest(w, "refresh_token is required")
		return
	}

	pair, err := s.auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, pair)
}

// handleCurrentUser returns the authenticated caller and their permissions.
func (s *Server) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())
	if identity == nil {
		writeError(w, http.StatusBadRequest, ErrCodeUserDoesNotExist, "user does not exist")
		return
	}

	writeJSON(w, http.StatusOK, identity)
}

// handleLogout revokes the caller's access token.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.Logout(r.Context(), tokenFrom(r.Context())); err != nil {
		s.writeDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
