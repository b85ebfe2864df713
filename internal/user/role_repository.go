package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// RoleRepository defines the interface for role and permission persistence.
type RoleRepository interface {
	CreateRole(ctx context.Context, title string) (*Role, error)
	GetRoleByID(ctx context.Context, id int64) (*Role, error)
	GetRoleByTitle(ctx context.Context, title string) (*Role, error)
	ListRoles(ctx context.Context) ([]Role, error)
	GrantPermission(ctx context.Context, roleID int64, permission string) error
	PermissionsForRole(ctx context.Context, roleID int64) ([]string, error)
	PermissionsForUser(ctx context.Context, userID int64) ([]string, error)
}

// SQLiteRoleRepository implements RoleRepository using SQLite.
type SQLiteRoleRepository struct {
	db *sql.DB
}

// NewRoleRepository creates a new SQLite-backed role repository.
func NewRoleRepository(db *sql.DB) *SQLiteRoleRepository {
	return &SQLiteRoleRepository{db: db}
}

// CreateRole inserts a new role with the given title.
func (r *SQLiteRoleRepository) CreateRole(ctx context.Context, title string) (*Role, error) {
	result, err := r.db.ExecContext(ctx, "INSERT INTO roles (title) VALUES (?)", title)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrRoleExists
		}
		return nil, fmt.Errorf("creating role: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading inserted role id: %w", err)
	}
	return &Role{ID: id, Title: title}, nil
}

// GetRoleByID retrieves a role by its unique ID.
func (r *SQLiteRoleRepository) GetRoleByID(ctx context.Context, id int64) (*Role, error) {
	return r.getRole(ctx, "SELECT id, title FROM roles WHERE id = ?", id)
}

// GetRoleByTitle retrieves a role by its title.
func (r *SQLiteRoleRepository) GetRoleByTitle(ctx context.Context, title string) (*Role, error) {
	return r.getRole(ctx, "SELECT id, title FROM roles WHERE title = ?", title)
}

// ListRoles returns all roles ordered by title.
func (r *SQLiteRoleRepository) ListRoles(ctx context.Context) ([]Role, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, title FROM roles ORDER BY title ASC")
	if err != nil {
		return nil, fmt.Errorf("listing roles: %w", err)
	}
	defer rows.Close()

	var roles []Role
	for rows.Next() {
		var role Role
		if err := rows.Scan(&role.ID, &role.Title); err != nil {
			return nil, fmt.Errorf("scanning role: %w", err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating roles: %w", err)
	}

	if roles == nil {
		roles = []Role{}
	}
	return roles, nil
}

// GrantPermission attaches a permission to a role, creating the
// permission record if it does not exist yet. Granting an already
// attached permission is a no-op.
func (r *SQLiteRoleRepository) GrantPermission(ctx context.Context, roleID int64, permission string) error {
	if _, err := r.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO permissions (title) VALUES (?)", permission,
	); err != nil {
		return fmt.Errorf("creating permission: %w", err)
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO role_permissions (role_id, permission_id)
		 SELECT ?, id FROM permissions WHERE title = ?`,
		roleID, permission,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrRoleNotFound
		}
		return fmt.Errorf("granting permission: %w", err)
	}
	return nil
}

// PermissionsForRole returns the permission titles attached to a role.
func (r *SQLiteRoleRepository) PermissionsForRole(ctx context.Context, roleID int64) ([]string, error) {
	return r.queryPermissions(ctx,
		`SELECT p.title FROM permissions p
		 JOIN role_permissions rp ON rp.permission_id = p.id
		 WHERE rp.role_id = ?
		 ORDER BY p.title ASC`, roleID)
}

// PermissionsForUser returns the permission titles granted to a user
// transitively via their role. Users without a role have none.
func (r *SQLiteRoleRepository) PermissionsForUser(ctx context.Context, userID int64) ([]string, error) {
	return r.queryPermissions(ctx,
		`SELECT p.title FROM permissions p
		 JOIN role_permissions rp ON rp.permission_id = p.id
		 JOIN users u ON u.role_id = rp.role_id
		 WHERE u.id = ?
		 ORDER BY p.title ASC`, userID)
}

func (r *SQLiteRoleRepository) queryPermissions(ctx context.Context, query string, arg any) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("querying permissions: %w", err)
	}
	defer rows.Close()

	var titles []string
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, fmt.Errorf("scanning permission: %w", err)
		}
		titles = append(titles, title)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating permissions: %w", err)
	}

	if titles == nil {
		titles = []string{}
	}
	return titles, nil
}

func (r *SQLiteRoleRepository) getRole(ctx context.Context, query string, args ...any) (*Role, error) {
	var role Role
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&role.ID, &role.Title)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoleNotFound
		}
		return nil, fmt.Errorf("scanning role: %w", err)
	}
	return &role, nil
}
