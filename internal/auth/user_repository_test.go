package auth

import (
	"context"
	"errors"
	"testing"
)

func TestUserRepository_CreateAndGet(t *testing.T) {
	repo := NewUserRepository(testDB(t))
	ctx := context.Background()

	user := createUser(t, repo, "testuser", "password-123", RoleOperator)
	if user.ID == "" {
		t.Fatal("Create() should generate an ID")
	}

	byID, err := repo.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	byName, err := repo.GetByUsername(ctx, "testuser")
	if err != nil {
		t.Fatalf("GetByUsername() error = %v", err)
	}

	for _, got := range []*User{byID, byName} {
		if got.ID != user.ID || got.Username != "testuser" || got.Role != RoleOperator {
			t.Errorf("got %+v", got)
		}
		if !got.IsActive || got.PasswordHash == "" {
			t.Errorf("IsActive=%v hash=%q", got.IsActive, got.PasswordHash)
		}
		if !got.CreatedAt.Equal(user.CreatedAt) {
			t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, user.CreatedAt)
		}
	}
}

func TestUserRepository_NotFound(t *testing.T) {
	repo := NewUserRepository(testDB(t))
	ctx := context.Background()

	if _, err := repo.GetByID(ctx, "usr-missing"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("GetByID() error = %v, want ErrUserNotFound", err)
	}
	if _, err := repo.GetByUsername(ctx, "nobody"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("GetByUsername() error = %v, want ErrUserNotFound", err)
	}
	if err := repo.UpdatePassword(ctx, "usr-missing", "x"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("UpdatePassword() error = %v, want ErrUserNotFound", err)
	}
	if err := repo.SetActive(ctx, "usr-missing", false); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("SetActive() error = %v, want ErrUserNotFound", err)
	}
}

func TestUserRepository_DuplicateUsername(t *testing.T) {
	repo := NewUserRepository(testDB(t))
	createUser(t, repo, "dupe", "password-123", RoleViewer)

	err := repo.Create(context.Background(), &User{Username: "dupe", PasswordHash: "x", Role: RoleViewer})
	if !errors.Is(err, ErrUsernameExists) {
		t.Errorf("Create() error = %v, want ErrUsernameExists", err)
	}
}

func TestUserRepository_CreateValidates(t *testing.T) {
	repo := NewUserRepository(testDB(t))

	tests := []struct {
		name string
		user User
	}{
		{"bad username", User{Username: "bad name", Role: RoleViewer}},
		{"unknown role", User{Username: "ok", Role: "owner"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := tt.user
			if err := repo.Create(context.Background(), &u); !errors.Is(err, ErrInvalidUser) {
				t.Errorf("Create() error = %v, want ErrInvalidUser", err)
			}
		})
	}
}

func TestUserRepository_ListAndCount(t *testing.T) {
	repo := NewUserRepository(testDB(t))
	ctx := context.Background()

	users, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if users == nil || len(users) != 0 {
		t.Errorf("List() on empty table = %v, want empty non-nil slice", users)
	}

	for _, name := range []string{"bravo", "alpha"} {
		if err := repo.Create(ctx, &User{Username: name, PasswordHash: "x", Role: RoleViewer, IsActive: true}); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	users, err = repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("List() returned %d users, want 2", len(users))
	}

	count, err := repo.Count(ctx)
	if err != nil || count != 2 {
		t.Errorf("Count() = %d, %v", count, err)
	}
}

func TestUserRepository_UpdatePasswordAndSetActive(t *testing.T) {
	repo := NewUserRepository(testDB(t))
	ctx := context.Background()
	user := createUser(t, repo, "carol", "old-password-1", RoleOperator)

	newHash, _ := HashPassword("new-password-1")
	if err := repo.UpdatePassword(ctx, user.ID, newHash); err != nil {
		t.Fatalf("UpdatePassword() error = %v", err)
	}
	if _, err := Authenticate(ctx, repo, "carol", "new-password-1"); err != nil {
		t.Errorf("Authenticate() with new password error = %v", err)
	}

	if err := repo.SetActive(ctx, user.ID, false); err != nil {
		t.Fatalf("SetActive() error = %v", err)
	}
	got, _ := repo.GetByID(ctx, user.ID)
	if got.IsActive {
		t.Error("user still active after SetActive(false)")
	}
}
