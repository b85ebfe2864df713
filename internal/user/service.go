package user

import (
	"context"
	"fmt"

	"github.com/nvoloshin/userhub/internal/infrastructure/logging"
)

// Service implements the user directory operations: create, partial
// update, soft deactivation, lookup, and search. All administrative
// surfaces go through here rather than touching repositories directly.
type Service struct {
	repo   Repository
	roles  RoleRepository
	logger *logging.Logger
}

// NewService creates a user directory service.
func NewService(repo Repository, roles RoleRepository, logger *logging.Logger) *Service {
	return &Service{
		repo:   repo,
		roles:  roles,
		logger: logger.With("component", "user"),
	}
}

// CreateInput carries the fields for a new account.
type CreateInput struct {
	Login       string
	Password    string
	FullName    string
	Email       string
	PhoneNumber string
	City        string
	Address     string
	ZipCode     string
	RoleID      int64
	IsActive    *bool
}

// UpdateInput carries a partial update. Nil pointers mean "field not
// supplied" and leave the current value untouched.
type UpdateInput struct {
	FullName    *string
	Email       *string
	PhoneNumber *string
	City        *string
	Address     *string
	ZipCode     *string
	IsActive    *bool
}

// Create registers a new account with a hashed password.
//
// The login must be unique and both login and password must meet
// format requirements. New accounts are active unless the input says
// otherwise.
func (s *Service) Create(ctx context.Context, input CreateInput) (*User, error) {
	if !IsValidLogin(input.Login) {
		return nil, ErrInvalidLogin
	}
	if !IsValidPassword(input.Password) {
		return nil, ErrInvalidPassword
	}

	role, err := s.roles.GetRoleByID(ctx, input.RoleID)
	if err != nil {
		return nil, err
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}

	u := &User{
		Login:        input.Login,
		PasswordHash: hash,
		FullName:     input.FullName,
		Email:        input.Email,
		PhoneNumber:  input.PhoneNumber,
		City:         input.City,
		Address:      input.Address,
		ZipCode:      input.ZipCode,
		Role:         role,
		IsActive:     active,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	s.logger.Info("user created", "user_id", u.ID, "login", u.Login, "role", role.Title)
	return u, nil
}

// Get retrieves an account by ID. Inactive accounts are treated as
// absent.
func (s *Service) Get(ctx context.Context, id int64) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// GetByLogin retrieves an account by login regardless of active state.
// Callers decide how to treat inactive accounts.
func (s *Service) GetByLogin(ctx context.Context, login string) (*User, error) {
	return s.repo.GetByLogin(ctx, login)
}

// GetAny retrieves an account by ID regardless of active state.
func (s *Service) GetAny(ctx context.Context, id int64) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// Deactivate soft-deletes an account by clearing its active flag.
// Deactivating an already inactive account is a no-op.
func (s *Service) Deactivate(ctx context.Context, id int64) error {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !u.IsActive {
		return nil
	}

	u.IsActive = false
	if err := s.repo.Update(ctx, u); err != nil {
		return err
	}

	s.logger.Info("user deactivated", "user_id", u.ID, "login", u.Login)
	return nil
}

// Update applies a partial update to an account and returns the
// updated record.
//
// Updating an inactive account is blocked unless the update itself
// reactivates it: without that, a deactivated account is
// indistinguishable from an absent one.
func (s *Service) Update(ctx context.Context, id int64, input UpdateInput) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	reactivating := input.IsActive != nil && *input.IsActive
	if !u.IsActive && !reactivating {
		return nil, ErrUserNotFound
	}

	applyString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	applyString(&u.FullName, input.FullName)
	applyString(&u.Email, input.Email)
	applyString(&u.PhoneNumber, input.PhoneNumber)
	applyString(&u.City, input.City)
	applyString(&u.Address, input.Address)
	applyString(&u.ZipCode, input.ZipCode)
	if input.IsActive != nil {
		u.IsActive = *input.IsActive
	}

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}

	s.logger.Info("user updated", "user_id", u.ID, "login", u.Login)
	return u, nil
}

// Search returns active accounts matching the query, ordered as
// requested. Inactive accounts never appear in results.
func (s *Service) Search(ctx context.Context, q Query) ([]User, error) {
	return s.repo.Search(ctx, q)
}

// Permissions returns the permission titles granted to an account via
// its role.
func (s *Service) Permissions(ctx context.Context, userID int64) ([]string, error) {
	return s.roles.PermissionsForUser(ctx, userID)
}
