package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
)

const seedPasswordBytes = 16

// SeedAdmin creates the bootstrap admin when no users exist. An empty
// password is replaced by a random one, which is returned and logged once.
// It returns "" when seeding was skipped.
func SeedAdmin(ctx context.Context, repo UserRepository, username, password string, logger *slog.Logger) (string, error) {
	count, err := repo.Count(ctx)
	if err != nil {
		return "", fmt.Errorf("checking user count: %w", err)
	}
	if count > 0 {
		logger.Debug("users exist, skipping admin seed")
		return "", nil
	}

	if username == "" {
		username = "admin"
	}

	generated := password == ""
	if generated {
		b := make([]byte, seedPasswordBytes)
		if _, err := rand.Read(b); err != nil {
			return "", fmt.Errorf("generating seed password: %w", err)
		}
		password = hex.EncodeToString(b)
	} else if err := CheckPassword(password); err != nil {
		return "", fmt.Errorf("bootstrap password: %w", err)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("hashing seed password: %w", err)
	}

	admin := &User{
		Username:     username,
		DisplayName:  "Administrator",
		PasswordHash: hash,
		Role:         RoleAdmin,
		IsActive:     true,
	}
	if err := repo.Create(ctx, admin); err != nil {
		return "", fmt.Errorf("creating seed admin: %w", err)
	}

	if generated {
		logger.Warn("seed admin account created",
			"username", username,
			"password", password,
			"action_required", "change this password immediately",
		)
	} else {
		logger.Info("seed admin account created", "username", username)
	}
	return password, nil
}
