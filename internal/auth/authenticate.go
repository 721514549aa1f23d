package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var (
	dummyHashOnce sync.Once
	dummyHash     string
)

// timingHash returns a fixed hash verified for unknown usernames so a
// failed lookup costs the same as a wrong password.
func timingHash() string {
	dummyHashOnce.Do(func() {
		dummyHash, _ = HashPassword("gltoolkit-timing-equaliser") //nolint:errcheck // falls back to an invalid hash
	})
	return dummyHash
}

// Authenticate checks username and password. Unknown users and wrong
// passwords both return ErrInvalidCredentials. A hash stored with
// outdated parameters is replaced after a successful check.
func Authenticate(ctx context.Context, repo UserRepository, username, password string) (*User, error) {
	user, err := repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			_, _ = VerifyPassword(password, timingHash()) //nolint:errcheck // timing only
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	ok, err := VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verifying password: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	if NeedsRehash(user.PasswordHash) {
		upgradeHash(ctx, repo, user, password)
	}
	return user, nil
}

// upgradeHash re-hashes password with DefaultHashParams. Failures leave
// the old hash in place; it still verifies.
func upgradeHash(ctx context.Context, repo UserRepository, user *User, password string) {
	hash, err := HashPassword(password)
	if err != nil {
		return
	}
	if err := repo.UpdatePassword(ctx, user.ID, hash); err != nil {
		return
	}
	user.PasswordHash = hash
}
