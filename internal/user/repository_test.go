package user

import (
	"context"
	"errors"
	"testing"
)

func TestRepository_CreateAndGetByID(t *testing.T) {
	db := testDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	role := seedRole(t, db, "manager")

	hash, _ := HashPassword("pw12345")
	u := &User{
		Login:        "testuser",
		PasswordHash: hash,
		FullName:     "Test User",
		Email:        "test@example.com",
		City:         "Riga",
		Role:         role,
		IsActive:     true,
	}

	if err := repo.Create(ctx, u); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if u.ID == 0 {
		t.Fatal("Create() should assign an ID")
	}

	got, err := repo.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}

	if got.Login != "testuser" {
		t.Errorf("Login = %q, want %q", got.Login, "testuser")
	}
	if got.FullName != "Test User" {
		t.Errorf("FullName = %q, want %q", got.FullName, "Test User")
	}
	if got.Email != "test@example.com" {
		t.Errorf("Email = %q, want %q", got.Email, "test@example.com")
	}
	if got.Role == nil || got.Role.Title != "manager" {
		t.Errorf("Role = %+v, want title %q", got.Role, "manager")
	}
	if !got.IsActive {
		t.Error("IsActive should be true")
	}
	if got.PasswordHash == "" {
		t.Error("PasswordHash should be populated")
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt should be populated")
	}
}

func TestRepository_CreateWithoutRole(t *testing.T) {
	db := testDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	hash, _ := HashPassword("pw12345")
	u := &User{Login: "roleless", PasswordHash: hash, IsActive: true}

	if err := repo.Create(ctx, u); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := repo.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Role != nil {
		t.Errorf("Role = %+v, want nil", got.Role)
	}
}

func TestRepository_GetByLogin(t *testing.T) {
	db := testDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	u := seedUser(t, db, "admin@local", nil)

	got, err := repo.GetByLogin(ctx, "admin@local")
	if err != nil {
		t.Fatalf("GetByLogin() error = %v", err)
	}
	if got.ID != u.ID {
		t.Errorf("ID = %d, want %d", got.ID, u.ID)
	}
}

func TestRepository_GetByLogin_NotFound(t *testing.T) {
	db := testDB(t)
	repo := NewRepository(db)

	_, err := repo.GetByLogin(context.Background(), "nonexistent")
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("error = %v, want ErrUserNotFound", err)
	}
}

func TestRepository_DuplicateLogin(t *testing.T) {
	db := testDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seedUser(t, db, "duplicate", nil)

	hash, _ := HashPassword("pw12345")
	u := &User{Login: "duplicate", PasswordHash: hash, IsActive: true}
	err := repo.Create(ctx, u)
	if !errors.Is(err, ErrLoginExists) {
		t.Errorf("error = %v, want ErrLoginExists", err)
	}
}

func TestRepository_DuplicateEmail(t *testing.T) {
	db := testDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	hash, _ := HashPassword("pw12345")
	first := &User{Login: "first", Email: "same@example.com", PasswordHash: hash, IsActive: true}
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	second := &User{Login: "second", Email: "same@example.com", PasswordHash: hash, IsActive: true}
	err := repo.Create(ctx, second)
	if !errors.Is(err, ErrEmailExists) {
		t.Errorf("error = %v, want ErrEmailExists", err)
	}
}

func TestRepository_NilEmailsDoNotCollide(t *testing.T) {
	db := testDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	hash, _ := HashPassword("pw12345")
	for _, login := range []string{"noemail1", "noemail2"} {
		u := &User{Login: login, PasswordHash: hash, IsActive: true}
		if err := repo.Create(ctx, u); err != nil {
			t.Fatalf("Create(%s) error = %v", login, err)
		}
	}
}

func TestRepository_Update(t *testing.T) {
	db := testDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	u := seedUser(t, db, "updatable", nil)

	u.FullName = "Updated Name"
	u.City = "Tallinn"
	u.IsActive = false
	if err := repo.Update(ctx, u); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, err := repo.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.FullName != "Updated Name" {
		t.Errorf("FullName = %q, want %q", got.FullName, "Updated Name")
	}
	if got.City != "Tallinn" {
		t.Errorf("City = %q, want %q", got.City, "Tallinn")
	}
	if got.IsActive {
		t.Error("IsActive should be false after update")
	}
}

func TestRepository_Update_NotFound(t *testing.T) {
	db := testDB(t)
	repo := NewRepository(db)

	u := &User{ID: 9999, Login: "ghost"}
	err := repo.Update(context.Background(), u)
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("error = %v, want ErrUserNotFound", err)
	}
}

func TestRepository_RoleDeletionClearsUserRole(t *testing.T) {
	db := testDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	role := seedRole(t, db, "temporary")
	u := seedUser(t, db, "orphaned", role)

	if _, err := db.Exec("DELETE FROM roles WHERE id = ?", role.ID); err != nil {
		t.Fatalf("deleting role: %v", err)
	}

	got, err := repo.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Role != nil {
		t.Errorf("Role = %+v, want nil after role deletion", got.Role)
	}
}

func TestRepository_Count(t *testing.T) {
	db := testDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 0 {
		t.Errorf("Count() = %d, want 0", count)
	}

	seedUser(t, db, "counted1", nil)
	seedUser(t, db, "counted2", nil)

	count, err = repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 2 {
		t.Errorf("Count() = %d, want 2", count)
	}
}
