package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nvoloshin/userhub/internal/audit"
	"github.com/nvoloshin/userhub/internal/user"
)

// defaultPageSize matches the directory listing default.
const defaultPageSize = 50

type createUserRequest struct {
	Login       string `json:"login"`
	Password    string `json:"password"`
	FullName    string `json:"full_name"`
	Email       string `json:"email,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
	City        string `json:"city,omitempty"`
	Address     string `json:"address,omitempty"`
	ZipCode     string `json:"zip_code,omitempty"`
	RoleID      int64  `json:"role_id"`
	IsActive    *bool  `json:"is_active,omitempty"`
}

type updateUserRequest struct {
	FullName    *string `json:"full_name,omitempty"`
	Email       *string `json:"email,omitempty"`
	PhoneNumber *string `json:"phone_number,omitempty"`
	City        *string `json:"city,omitempty"`
	Address     *string `json:"address,omitempty"`
	ZipCode     *string `json:"zip_code,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

// searchUsersRequest is the body for POST /users. Page and size travel in
// query parameters.
type searchUsersRequest struct {
	Search   string           `json:"search,omitempty"`
	Filters  *searchFilters   `json:"filters,omitempty"`
	Ordering *orderingRequest `json:"ordering,omitempty"`
}

type searchFilters struct {
	FullName    *string `json:"full_name,omitempty"`
	Email       *string `json:"email,omitempty"`
	PhoneNumber *string `json:"phone_number,omitempty"`
	City        *string `json:"city,omitempty"`
	Address     *string `json:"address,omitempty"`
	ZipCode     *string `json:"zip_code,omitempty"`
	RoleTitle   *string `json:"role_title,omitempty"`
	IDs         []int64 `json:"id,omitempty"`
}

type orderingRequest struct {
	Key  string `json:"key"`
	Desc bool   `json:"desc,omitempty"`
}

// paginatedUsers is the response for POST /users.
type paginatedUsers struct {
	Items []user.User `json:"items"`
	Total int         `json:"total"`
	Page  int         `json:"page"`
	Size  int         `json:"size"`
}

// handleCreateUser registers a new account. Downstream services are
// notified over MQTT; delivery is best-effort and never fails the request.
func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	u, err := s.users.Create(r.Context(), user.CreateInput{
		Login:       req.Login,
		Password:    req.Password,
		FullName:    req.FullName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		City:        req.City,
		Address:     req.Address,
		ZipCode:     req.ZipCode,
		RoleID:      req.RoleID,
		IsActive:    req.IsActive,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.recordAudit(r, audit.ActionUserCreated, u.ID, map[string]any{"login": u.Login})
	if s.events != nil {
		s.events.UserRegistered(u)
	}

	writeJSON(w, http.StatusCreated, u)
}

// handleUpdateUser applies a partial update to the account named by the
// user_id query parameter.
func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := userIDQuery(w, r)
	if !ok {
		return
	}

	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	u, err := s.users.Update(r.Context(), id, user.UpdateInput{
		FullName:    req.FullName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		City:        req.City,
		Address:     req.Address,
		ZipCode:     req.ZipCode,
		IsActive:    req.IsActive,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.recordAudit(r, audit.ActionUserUpdated, u.ID, nil)

	writeJSON(w, http.StatusOK, u)
}

// handleDeactivateUser soft-disables the account named by the user_id
// query parameter. Deactivating an already inactive account succeeds.
func (s *Server) handleDeactivateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := userIDQuery(w, r)
	if !ok {
		return
	}

	if err := s.users.Deactivate(r.Context(), id); err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.recordAudit(r, audit.ActionUserDeactivated, id, nil)

	w.WriteHeader(http.StatusNoContent)
}

// handleGetUser returns a single active account by ID.
func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "user_id"), 10, 64)
	if err != nil {
		writeBadRequest(w, "user_id must be an integer")
		return
	}

	u, err := s.users.Get(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, u)
}

// handleSearchUsers returns a page of the active user directory. Search,
// filters, and ordering travel in the JSON body; page and size in query
// parameters (1-based page, default size 50).
func (s *Server) handleSearchUsers(w http.ResponseWriter, r *http.Request) {
	var req searchUsersRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeBadRequest(w, "invalid JSON body")
			return
		}
	}

	query := user.Query{Search: req.Search}
	if req.Filters != nil {
		query.Filters = user.Filters{
			FullName:    req.Filters.FullName,
			Email:       req.Filters.Email,
			PhoneNumber: req.Filters.PhoneNumber,
			City:        req.Filters.City,
			Address:     req.Filters.Address,
			ZipCode:     req.Filters.ZipCode,
			RoleTitle:   req.Filters.RoleTitle,
			IDs:         req.Filters.IDs,
		}
	}
	if req.Ordering != nil {
		query.Ordering = &user.Ordering{
			Key:  user.SortKey(req.Ordering.Key),
			Desc: req.Ordering.Desc,
		}
	}

	page, size, ok := pageParams(w, r)
	if !ok {
		return
	}

	users, err := s.users.Search(r.Context(), query)
	if err != nil {
		if errors.Is(err, user.ErrInvalidSortKey) {
			writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
			return
		}
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, paginate(users, page, size))
}

// paginate slices a full result set into the requested page. The total
// always reflects the unsliced count.
func paginate(users []user.User, page, size int) paginatedUsers {
	start := (page - 1) * size
	end := start + size
	if start > len(users) {
		start = len(users)
	}
	if end > len(users) {
		end = len(users)
	}

	return paginatedUsers{
		Items: users[start:end],
		Total: len(users),
		Page:  page,
		Size:  size,
	}
}

// pageParams reads the page and size query parameters, both 1-based.
func pageParams(w http.ResponseWriter, r *http.Request) (page, size int, ok bool) {
	page, size = 1, defaultPageSize

	if raw := r.URL.Query().Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeBadRequest(w, "page must be a positive integer")
			return 0, 0, false
		}
		page = n
	}
	if raw := r.URL.Query().Get("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeBadRequest(w, "size must be a positive integer")
			return 0, 0, false
		}
		size = n
	}

	return page, size, true
}

// userIDQuery reads the required user_id query parameter.
func userIDQuery(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.URL.Query().Get("user_id")
	if raw == "" {
		writeBadRequest(w, "user_id query parameter is required")
		return 0, false
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeBadRequest(w, "user_id must be an integer")
		return 0, false
	}
	return id, true
}

// recordAudit writes an audit entry for a management action. Failures are
// logged, never surfaced to the client.
func (s *Server) recordAudit(r *http.Request, action string, targetID int64, detail map[string]any) {
	if s.audit == nil {
		return
	}

	entry := &audit.Entry{
		Action:     action,
		TargetType: audit.TargetUser,
		TargetID:   strconv.FormatInt(targetID, 10),
		Detail:     detail,
	}
	if identity := identityFrom(r.Context()); identity != nil {
		entry.ActorID = identity.User.ID
	}

	if err := s.audit.Record(r.Context(), entry); err != nil {
		s.logger.Warn("recording audit entry failed", "action", action, "error", err)
	}
}
