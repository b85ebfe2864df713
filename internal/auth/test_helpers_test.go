package auth

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	_ "github.com/mattn/go-sqlite3"
	"github.com/redis/go-redis/v9"

	"github.com/nvoloshin/userhub/internal/infrastructure/config"
	"github.com/nvoloshin/userhub/internal/infrastructure/logging"
	"github.com/nvoloshin/userhub/internal/user"
)

const testSecret = "test-secret-key-for-jwt-signing-0"

// testJWTConfig returns a valid JWT configuration for tests.
func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:          testSecret,
		Algorithm:       "HS256",
		AccessTokenTTL:  15,
		RefreshTokenTTL: 60,
	}
}

// testCodec builds a codec from the test JWT configuration.
func testCodec(t *testing.T) *Codec {
	t.Helper()

	codec, err := NewCodec(testJWTConfig())
	if err != nil {
		t.Fatalf("NewCodec() error = %v", err)
	}
	return codec
}

// testBlacklist starts an in-process Redis and wraps it in a Blacklist.
func testBlacklist(t *testing.T) (*Blacklist, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("starting miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewBlacklistFromClient(client), mr
}

// testDB creates a temporary SQLite database with the directory schema.
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
	`
	if _, err := db.Exec(schemaSQL); err != nil {
		t.Fatalf("applying schema: %v", err)
	}

	return db
}

// testStack wires a full auth service over a temp database and an
// in-process Redis.
func testStack(t *testing.T) (*Service, *sql.DB, *miniredis.Miniredis) {
	t.Helper()

	db := testDB(t)
	blacklist, mr := testBlacklist(t)
	users := user.NewService(user.NewRepository(db), user.NewRoleRepository(db), logging.Default())

	return NewService(testCodec(t), blacklist, users, logging.Default()), db, mr
}

// seedActiveUser inserts an active user with the password "pw12345".
func seedActiveUser(t *testing.T, db *sql.DB, login string) *user.User {
	t.Helper()

	hash, err := user.HashPassword("pw12345")
	if err != nil {
		t.Fatalf("hashing seed password: %v", err)
	}

	u := &user.User{Login: login, PasswordHash: hash, IsActive: true}
	if err := user.NewRepository(db).Create(context.Background(), u); err != nil {
		t.Fatalf("seeding user %q: %v", login, err)
	}
	return u
}

// signToken hand-signs a token with arbitrary claims, bypassing the codec.
func signToken(t *testing.T, claims Claims) string {
	t.Helper()

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("signing test token: %v", err)
	}
	return signed
}

// expiredToken signs a token of the given kind that expired an hour ago.
func expiredToken(t *testing.T, userID int64, kind TokenKind) string {
	t.Helper()

	return signToken(t, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			ID:        "expired-token",
		},
		UserID: userID,
		Kind:   kind,
	})
}
