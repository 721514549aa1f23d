package auth

import (
	"context"
	"errors"
	"testing"
)

func TestSeedAdmin_GeneratesPasswordOnEmptyDB(t *testing.T) {
	repo := NewUserRepository(testDB(t))
	ctx := context.Background()

	password, err := SeedAdmin(ctx, repo, "", "", discardLogger())
	if err != nil {
		t.Fatalf("SeedAdmin() error = %v", err)
	}
	if len(password) != seedPasswordBytes*2 {
		t.Errorf("generated password length = %d, want %d", len(password), seedPasswordBytes*2)
	}

	user, err := Authenticate(ctx, repo, "admin", password)
	if err != nil {
		t.Fatalf("Authenticate() with seeded password error = %v", err)
	}
	if user.Role != RoleAdmin || !user.IsActive {
		t.Errorf("seeded user = %+v", user)
	}
}

func TestSeedAdmin_UsesConfiguredCredentials(t *testing.T) {
	repo := NewUserRepository(testDB(t))
	ctx := context.Background()

	password, err := SeedAdmin(ctx, repo, "installer", "configured-password", discardLogger())
	if err != nil {
		t.Fatalf("SeedAdmin() error = %v", err)
	}
	if password != "configured-password" {
		t.Errorf("SeedAdmin() returned %q", password)
	}
	if _, err := Authenticate(ctx, repo, "installer", "configured-password"); err != nil {
		t.Errorf("Authenticate() error = %v", err)
	}
}

func TestSeedAdmin_RejectsShortPassword(t *testing.T) {
	repo := NewUserRepository(testDB(t))

	_, err := SeedAdmin(context.Background(), repo, "admin", "short", discardLogger())
	if !errors.Is(err, ErrWeakPassword) {
		t.Errorf("SeedAdmin() error = %v, want ErrWeakPassword", err)
	}
}

func TestSeedAdmin_SkipsWhenUsersExist(t *testing.T) {
	repo := NewUserRepository(testDB(t))
	ctx := context.Background()
	createUser(t, repo, "existing", "existing-password", RoleViewer)

	password, err := SeedAdmin(ctx, repo, "admin", "", discardLogger())
	if err != nil {
		t.Fatalf("SeedAdmin() error = %v", err)
	}
	if password != "" {
		t.Error("SeedAdmin() should skip when users exist")
	}

	count, _ := repo.Count(ctx)
	if count != 1 {
		t.Errorf("Count() = %d, want 1", count)
	}
}
