package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/nvoloshin/userhub/internal/infrastructure/logging"
	"github.com/nvoloshin/userhub/internal/user"
)

// seedPasswordBytes is the number of random bytes for the seed admin password.
const seedPasswordBytes = 16

// SeedAdminRoleTitle is the role created for the first-boot administrator.
const SeedAdminRoleTitle = "admin"

// SeedAdmin creates the initial administrator on first boot if no users
// exist: an admin role holding the user management permission, and an
// "admin" account assigned to it. The generated password is logged and
// must be changed immediately. Returns the generated password (empty
// string if seeding was skipped).
func SeedAdmin(ctx context.Context, users user.Repository, roles user.RoleRepository, logger *logging.Logger) (string, error) {
	count, err := users.Count(ctx)
	if err != nil {
		return "", fmt.Errorf("checking user count: %w", err)
	}

	if count > 0 {
		logger.Info("users exist, skipping admin seed")
		return "", nil
	}

	role, err := roles.GetRoleByTitle(ctx, SeedAdminRoleTitle)
	if errors.Is(err, user.ErrRoleNotFound) {
		role, err = roles.CreateRole(ctx, SeedAdminRoleTitle)
	}
	if err != nil {
		return "", fmt.Errorf("ensuring admin role: %w", err)
	}

	if err := roles.GrantPermission(ctx, role.ID, user.PermissionUserManagement); err != nil {
		return "", fmt.Errorf("granting admin permissions: %w", err)
	}

	passwordBytes := make([]byte, seedPasswordBytes)
	if _, err := rand.Read(passwordBytes); err != nil {
		return "", fmt.Errorf("generating seed password: %w", err)
	}
	password := hex.EncodeToString(passwordBytes)

	hash, err := user.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("hashing seed password: %w", err)
	}

	admin := &user.User{
		Login:        "admin",
		PasswordHash: hash,
		FullName:     "System Administrator",
		Role:         role,
		IsActive:     true,
	}

	if err := users.Create(ctx, admin); err != nil {
		return "", fmt.Errorf("creating seed admin: %w", err)
	}

	logger.Warn("seed admin account created",
		"login", "admin",
		"password", password,
		"action_required", "change this password immediately",
	)

	return password, nil
}
