package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Repository defines the interface for user account persistence.
type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByLogin(ctx context.Context, login string) (*User, error)
	Update(ctx context.Context, user *User) error
	Search(ctx context.Context, q Query) ([]User, error)
	Count(ctx context.Context) (int, error)
}

// userColumns is the select list shared by all user queries.
// Role columns come from a LEFT JOIN so users whose role was deleted
// still resolve.
const userColumns = `u.id, u.login, u.password_hash, u.full_name, u.email,
	u.phone_number, u.city, u.address, u.zip_code, u.role_id, u.is_active,
	u.created_at, u.updated_at, r.id, r.title`

const userSelect = "SELECT " + userColumns + " FROM users u LEFT JOIN roles r ON r.id = u.role_id"

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewRepository creates a new SQLite-backed user repository.
func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Create inserts a new user account. The assigned ID is written back to user.ID.
func (r *SQLiteRepository) Create(ctx context.Context, user *User) error {
	now := time.Now().UTC().Format(time.RFC3339)
	user.CreatedAt, _ = time.Parse(time.RFC3339, now) //nolint:errcheck // format is controlled
	user.UpdatedAt = user.CreatedAt

	var roleID any
	if user.Role != nil {
		roleID = user.Role.ID
	}

	result, err := r.db.ExecContext(ctx,
		`INSERT INTO users (login, password_hash, full_name, email, phone_number, city, address, zip_code, role_id, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.Login, user.PasswordHash, nullString(user.FullName), nullString(user.Email),
		nullString(user.PhoneNumber), nullString(user.City), nullString(user.Address),
		nullString(user.ZipCode), roleID, boolToInt(user.IsActive), now, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			if strings.Contains(err.Error(), "users.email") {
				return ErrEmailExists
			}
			return ErrLoginExists
		}
		return fmt.Errorf("creating user: %w", err)
	}

	user.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading inserted user id: %w", err)
	}
	return nil
}

// GetByID retrieves a user by their unique ID, active or not.
func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*User, error) {
	return r.getUser(ctx, userSelect+" WHERE u.id = ?", id)
}

// GetByLogin retrieves a user by their login, active or not.
func (r *SQLiteRepository) GetByLogin(ctx context.Context, login string) (*User, error) {
	return r.getUser(ctx, userSelect+" WHERE u.login = ?", login)
}

// Update modifies a user's mutable fields (profile fields, role, active flag).
// Login and password hash are immutable through this method.
func (r *SQLiteRepository) Update(ctx context.Context, user *User) error {
	now := time.Now().UTC().Format(time.RFC3339)
	user.UpdatedAt, _ = time.Parse(time.RFC3339, now) //nolint:errcheck // format is controlled

	var roleID any
	if user.Role != nil {
		roleID = user.Role.ID
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET full_name = ?, email = ?, phone_number = ?, city = ?, address = ?, zip_code = ?, role_id = ?, is_active = ?, updated_at = ? WHERE id = ?`,
		nullString(user.FullName), nullString(user.Email), nullString(user.PhoneNumber),
		nullString(user.City), nullString(user.Address), nullString(user.ZipCode),
		roleID, boolToInt(user.IsActive), now, user.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailExists
		}
		return fmt.Errorf("updating user: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Count returns the total number of user accounts, active or not.
func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting users: %w", err)
	}
	return count, nil
}

// getUser executes a query and scans a single user result.
func (r *SQLiteRepository) getUser(ctx context.Context, query string, args ...any) (*User, error) {
	row := r.db.QueryRowContext(ctx, query, args...)
	return scanUserFrom(row)
}

// scanner is an interface for sql.Row and sql.Rows Scan methods.
type scanner interface {
	Scan(dest ...any) error
}

// scanUserFrom scans a user from any scanner (Row or Rows).
func scanUserFrom(s scanner) (*User, error) {
	var u User
	var fullName, email, phone, city, address, zip sql.NullString
	var roleID, joinedRoleID sql.NullInt64
	var roleTitle sql.NullString
	var isActive int
	var createdAt, updatedAt string

	err := s.Scan(&u.ID, &u.Login, &u.PasswordHash, &fullName, &email,
		&phone, &city, &address, &zip, &roleID, &isActive,
		&createdAt, &updatedAt, &joinedRoleID, &roleTitle)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("scanning user: %w", err)
	}

	u.FullName = fullName.String
	u.Email = email.String
	u.PhoneNumber = phone.String
	u.City = city.String
	u.Address = address.String
	u.ZipCode = zip.String
	u.IsActive = isActive != 0
	if joinedRoleID.Valid {
		u.Role = &Role{ID: joinedRoleID.Int64, Title: roleTitle.String}
	}

	u.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled
	u.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt) //nolint:errcheck // format is controlled

	return &u, nil
}

// Helper functions.

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// isUniqueViolation checks if a SQLite error is a UNIQUE constraint violation.
func isUniqueViolation(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "unique constraint"))
}

// isForeignKeyViolation checks if a SQLite error is a FOREIGN KEY constraint violation.
func isForeignKeyViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
