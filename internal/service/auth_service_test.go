package service

import (
	"errors"
	"testing"

	"chorequest/internal/validation"
)

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)

	result, err := env.auth.Register("alice@example.com", "s3cretpass", "Alice")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if result.Token == "" {
		t.Fatal("registration should issue a token")
	}

	t.Run("registration creates a personal family", func(t *testing.T) {
		families, err := env.families.GetUserFamilies(result.User.ID)
		if err != nil {
			t.Fatalf("GetUserFamilies failed: %v", err)
		}
		if len(families) != 1 {
			t.Fatalf("families = %d, want 1", len(families))
		}
		if families[0].Name != "Alice's Family" {
			t.Errorf("family name = %q", families[0].Name)
		}
	})

	t.Run("duplicate email is rejected", func(t *testing.T) {
		var validationErr validation.ValidationError
		if _, err := env.auth.Register("alice@example.com", "otherpass1", "Alice Two"); !errors.As(err, &validationErr) {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	t.Run("login with correct password", func(t *testing.T) {
		login, err := env.auth.Login("alice@example.com", "s3cretpass")
		if err != nil {
			t.Fatalf("Login failed: %v", err)
		}
		if login.User.ID != result.User.ID {
			t.Errorf("logged in as %d, want %d", login.User.ID, result.User.ID)
		}
	})

	t.Run("wrong password is rejected", func(t *testing.T) {
		if _, err := env.auth.Login("alice@example.com", "wrongpass1"); !errors.Is(err, ErrForbidden) {
			t.Errorf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("unknown email is rejected", func(t *testing.T) {
		if _, err := env.auth.Login("nobody@example.com", "s3cretpass"); !errors.Is(err, ErrForbidden) {
			t.Errorf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("token round-trips to the actor", func(t *testing.T) {
		actor, err := env.auth.ParseToken(result.Token)
		if err != nil {
			t.Fatalf("ParseToken failed: %v", err)
		}
		if actor.UserID != result.User.ID || actor.IsKid() {
			t.Errorf("actor = %+v, want guardian %d", actor, result.User.ID)
		}
	})

	t.Run("garbage token is rejected", func(t *testing.T) {
		if _, err := env.auth.ParseToken("not.a.token"); err == nil {
			t.Error("garbage token should not parse")
		}
	})
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)
	tests := []struct {
		name     string
		email    string
		password string
		fullName string
	}{
		{"bad email", "not-an-email", "s3cretpass", "Alice"},
		{"short password", "a@example.com", "short", "Alice"},
		{"empty name", "a@example.com", "s3cretpass", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var validationErr validation.ValidationError
			if _, err := env.auth.Register(tt.email, tt.password, tt.fullName); !errors.As(err, &validationErr) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}
