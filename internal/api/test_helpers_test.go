package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	_ "github.com/mattn/go-sqlite3"
	"github.com/redis/go-redis/v9"

	"github.com/nvoloshin/userhub/internal/audit"
	"github.com/nvoloshin/userhub/internal/auth"
	"github.com/nvoloshin/userhub/internal/infrastructure/config"
	"github.com/nvoloshin/userhub/internal/infrastructure/logging"
	"github.com/nvoloshin/userhub/internal/user"
)

const testJWTSecret = "test-secret-key-for-jwt-signing-0"

// testServer wires a full API stack over a temp database and an
// in-process Redis, returning the router and the raw database handle.
func testServer(t *testing.T) (http.Handler, *sql.DB) {
	t.Helper()

	srv, db := newTestServer(t, config.APIConfig{})
	return srv.buildRouter(), db
}

// newTestServer builds a Server over a temp database and an in-process
// Redis without starting the listener.
func newTestServer(t *testing.T, apiCfg config.APIConfig) (*Server, *sql.DB) {
	t.Helper()

	db := testDB(t)

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("starting miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	secCfg := config.SecurityConfig{
		JWT: config.JWTConfig{
			Secret:          testJWTSecret,
			Algorithm:       "HS256",
			AccessTokenTTL:  15,
			RefreshTokenTTL: 60,
		},
		Timezone: "UTC",
	}

	codec, err := auth.NewCodec(secCfg.JWT)
	if err != nil {
		t.Fatalf("NewCodec() error = %v", err)
	}

	users := user.NewService(user.NewRepository(db), user.NewRoleRepository(db), logging.Default())
	authSvc := auth.NewService(codec, auth.NewBlacklistFromClient(client), users, logging.Default())

	srv, err := New(Deps{
		Config:  apiCfg,
		Logger:  logging.Default(),
		Auth:    authSvc,
		Users:   users,
		Audit:   audit.NewSQLiteRepository(db),
		Version: "test",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	return srv, db
}

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

		CREATE UNIQUE INDEX idx_users_email ON users(email) WHERE email IS NOT NULL;

		CREATE TABLE audit_logs (
			id TEXT PRIMARY KEY,
			timestamp TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
			actor_id INTEGER,
			action TEXT NOT NULL,
			target_type TEXT NOT NULL,
			target_id TEXT NOT NULL,
			detail TEXT,
			FOREIGN KEY (actor_id) REFERENCES users(id) ON DELETE SET NULL
		) STRICT;
	`
	if _, err := db.Exec(schemaSQL); err != nil {
		t.Fatalf("applying schema: %v", err)
	}

	return db
}

// seedAccount inserts a user with the given login, password, and role.
// Role may be nil.
func seedAccount(t *testing.T, db *sql.DB, login, password string, role *user.Role) *user.User {
	t.Helper()

	hash, err := user.HashPassword(password)
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}

	u := &user.User{Login: login, PasswordHash: hash, Role: role, IsActive: true}
	if err := user.NewRepository(db).Create(context.Background(), u); err != nil {
		t.Fatalf("seeding user %q: %v", login, err)
	}
	return u
}

// seedAdminRole creates a role holding the user management permission.
func seedAdminRole(t *testing.T, db *sql.DB) *user.Role {
	t.Helper()

	roles := user.NewRoleRepository(db)
	role, err := roles.CreateRole(context.Background(), "admin")
	if err != nil {
		t.Fatalf("creating admin role: %v", err)
	}
	if err := roles.GrantPermission(context.Background(), role.ID, user.PermissionUserManagement); err != nil {
		t.Fatalf("granting permission: %v", err)
	}
	return role
}

// doRequest executes a request against the router and returns the recorder.
func doRequest(t *testing.T, handler http.Handler, method, path, token string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

// doJSON executes a JSON request.
func doJSON(t *testing.T, handler http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshalling request body: %v", err)
		}
		reader = bytes.NewReader(b)
	}
	return doRequest(t, handler, method, path, token, reader, "application/json")
}

// login authenticates through the API and returns the token pair.
func login(t *testing.T, handler http.Handler, username, password string) auth.TokenPair {
	t.Helper()

	form := url.Values{"username": {username}, "password": {password}}
	rec := doRequest(t, handler, http.MethodPost, "/api/v1/auth/login", "",
		strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	if rec.Code != http.StatusOK {
		t.Fatalf("login %q: status = %d, body = %s", username, rec.Code, rec.Body.String())
	}

	var pair auth.TokenPair
	decodeBody(t, rec, &pair)
	return pair
}

// decodeBody unmarshals a recorded JSON response body.
func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()

	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decoding response %q: %v", rec.Body.String(), err)
	}
}

// errorCode extracts the wire code from an error response.
func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var e Error
	decodeBody(t, rec, &e)
	return e.Code
}
