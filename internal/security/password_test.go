package security

import "testing"

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "correct horse battery" {
		t.Fatal("hash must not equal the password")
	}

	if !CheckPassword("correct horse battery", hash) {
		t.Error("correct password should verify")
	}
	if CheckPassword("wrong password", hash) {
		t.Error("wrong password should not verify")
	}
	if CheckPassword("correct horse battery", "") {
		t.Error("empty hash should never verify")
	}
}

func TestGenerateSecureToken(t *testing.T) {
	token, err := GenerateSecureToken(16)
	if err != nil {
		t.Fatalf("GenerateSecureToken failed: %v", err)
	}
	if len(token) != 32 {
		t.Errorf("token length = %d, want 32 hex chars for 16 bytes", len(token))
	}

	other, err := GenerateSecureToken(16)
	if err != nil {
		t.Fatalf("GenerateSecureToken failed: %v", err)
	}
	if token == other {
		t.Error("tokens should not repeat")
	}
}

func TestGenerateJoinCode(t *testing.T) {
	code := GenerateJoinCode()
	if len(code) != 8 {
		t.Errorf("join code length = %d, want 8", len(code))
	}
}
