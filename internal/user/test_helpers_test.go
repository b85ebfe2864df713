package user

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// testDB creates a temporary SQLite database with the directory schema
// applied. The database is removed when the test finishes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	schemaSQL := `
		CREATE TABLE roles (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL UNIQUE,
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		) STRICT;

		CREATE TABLE permissions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL UNIQUE
		) STRICT;

		CREATE TABLE role_permissions (
			role_id INTEGER NOT NULL,
			permission_id INTEGER NOT NULL,
			PRIMARY KEY (role_id, permission_id),
			FOREIGN KEY (role_id) REFERENCES roles(id) ON DELETE CASCADE,
			FOREIGN KEY (permission_id) REFERENCES permissions(id) ON DELETE CASCADE
		) STRICT;

		CREATE TABLE users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			login TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			full_name TEXT,
			email TEXT,
			phone_number TEXT,
			city TEXT,
			address TEXT,
			zip_code TEXT,
			role_id INTEGER,
			is_active INTEGER NOT NULL DEFAULT 1,
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
			updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
			FOREIGN KEY (role_id) REFERENCES roles(id) ON DELETE SET NULL
		) STRICT;

		CREATE UNIQUE INDEX idx_users_login ON users(login);
		CREATE UNIQUE INDEX idx_users_email ON users(email) WHERE email IS NOT NULL;
		CREATE INDEX idx_users_role ON users(role_id);
		CREATE INDEX idx_users_active ON users(is_active);
	`
	if _, err := db.Exec(schemaSQL); err != nil {
		t.Fatalf("applying schema: %v", err)
	}

	return db
}

// seedRole inserts a role and returns it.
func seedRole(t *testing.T, db *sql.DB, title string) *Role {
	t.Helper()

	repo := NewRoleRepository(db)
	role, err := repo.CreateRole(context.Background(), title)
	if err != nil {
		t.Fatalf("seeding role %q: %v", title, err)
	}
	return role
}

// seedUser inserts an active user with the given login and role.
func seedUser(t *testing.T, db *sql.DB, login string, role *Role) *User {
	t.Helper()

	hash, err := HashPassword("pw12345")
	if err != nil {
		t.Fatalf("hashing seed password: %v", err)
	}

	u := &User{
		Login:        login,
		PasswordHash: hash,
		IsActive:     true,
		Role:         role,
	}
	if err := NewRepository(db).Create(context.Background(), u); err != nil {
		t.Fatalf("seeding user %q: %v", login, err)
	}
	return u
}
