package auth

import (
	"context"
	"errors"
	"testing"
)

func TestAuthenticate(t *testing.T) {
	repo := NewUserRepository(testDB(t))
	ctx := context.Background()

	active := createUser(t, repo, "dave", "dave-password", RoleOperator)
	inactive := createUser(t, repo, "erin", "erin-password", RoleViewer)
	if err := repo.SetActive(ctx, inactive.ID, false); err != nil {
		t.Fatalf("SetActive() error = %v", err)
	}

	tests := []struct {
		name     string
		username string
		password string
		wantID   string
		wantErr  error
	}{
		{"correct", "dave", "dave-password", active.ID, nil},
		{"wrong password", "dave", "nope", "", ErrInvalidCredentials},
		{"unknown user", "mallory", "dave-password", "", ErrInvalidCredentials},
		{"inactive", "erin", "erin-password", "", ErrUserInactive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := Authenticate(ctx, repo, tt.username, tt.password)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Authenticate() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Authenticate() error = %v", err)
			}
			if user.ID != tt.wantID {
				t.Errorf("user.ID = %q, want %q", user.ID, tt.wantID)
			}
		})
	}
}
