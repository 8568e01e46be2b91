package auth

import (
	"strings"
	"testing"
	"time"
)

func newTestTokenAuth(t *testing.T) *TokenAuth {
	ta, err := NewTokenAuth("test-secret-key-for-unit-tests", 1*time.Hour)
	if err != nil {
		t.Fatalf("Failed to create token auth: %v", err)
	}
	return ta
}

func TestExtractToken(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{"valid bearer", "Bearer abc.def.ghi", "abc.def.ghi", false},
		{"lowercase scheme", "bearer abc.def.ghi", "abc.def.ghi", false},
		{"empty header", "", "", true},
		{"missing scheme", "abc.def.ghi", "", true},
		{"wrong scheme", "Basic abc", "", true},
		{"bearer without token", "Bearer ", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractToken(tt.header)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ExtractToken(%q) expected error, got token %q", tt.header, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ExtractToken(%q) unexpected error: %v", tt.header, err)
			}
			if got != tt.want {
				t.Errorf("ExtractToken(%q) = %q, want %q", tt.header, got, tt.want)
			}
		})
	}
}

func TestNewTokenAuth_EmptySecret(t *testing.T) {
	if _, err := NewTokenAuth("", time.Hour); err == nil {
		t.Error("Expected error for empty secret key")
	}
}

func TestNewTokenAuth_DefaultExpiry(t *testing.T) {
	ta, err := NewTokenAuth("secret", 0)
	if err != nil {
		t.Fatalf("Failed to create token auth: %v", err)
	}
	if ta.TokenExpiry != 7*24*time.Hour {
		t.Errorf("Expected default expiry of 7 days, got %v", ta.TokenExpiry)
	}
}

func TestTokenAuth_GenerateAndVerify(t *testing.T) {
	ta := newTestTokenAuth(t)

	token, err := ta.GenerateToken("507f1f77bcf86cd799439011", "alice@example.com", "user")
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}
	if token == "" {
		t.Fatal("Expected non-empty token")
	}

	identity, err := ta.VerifyToken(token)
	if err != nil {
		t.Fatalf("Failed to verify token: %v", err)
	}
	if identity.ID != "507f1f77bcf86cd799439011" {
		t.Errorf("Expected user ID 507f1f77bcf86cd799439011, got %q", identity.ID)
	}
	if identity.Email != "alice@example.com" {
		t.Errorf("Expected email alice@example.com, got %q", identity.Email)
	}
	if identity.Role != "user" {
		t.Errorf("Expected role user, got %q", identity.Role)
	}
}

func TestTokenAuth_VerifyRejectsTampered(t *testing.T) {
	ta := newTestTokenAuth(t)

	token, err := ta.GenerateToken("507f1f77bcf86cd799439011", "alice@example.com", "user")
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	tampered := token[:len(token)-2] + "xx"
	if _, err := ta.VerifyToken(tampered); err == nil {
		t.Error("Expected error for tampered token")
	}
}

func TestTokenAuth_VerifyRejectsWrongSecret(t *testing.T) {
	ta := newTestTokenAuth(t)
	other, err := NewTokenAuth("a-completely-different-secret", time.Hour)
	if err != nil {
		t.Fatalf("Failed to create token auth: %v", err)
	}

	token, err := ta.GenerateToken("507f1f77bcf86cd799439011", "alice@example.com", "user")
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	if _, err := other.VerifyToken(token); err == nil {
		t.Error("Expected error for token signed with a different secret")
	}
}

func TestTokenAuth_VerifyRejectsExpired(t *testing.T) {
	ta, err := NewTokenAuth("test-secret", -time.Hour)
	if err != nil {
		t.Fatalf("Failed to create token auth: %v", err)
	}

	token, err := ta.GenerateToken("507f1f77bcf86cd799439011", "alice@example.com", "user")
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	if _, err := ta.VerifyToken(token); err == nil {
		t.Error("Expected error for expired token")
	}
}

func TestHashPassword_VerifyRoundtrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	if !strings.HasPrefix(hash, "argon2id$") {
		t.Errorf("Expected argon2id hash format, got %q", hash)
	}

	ok, err := VerifyPassword(hash, "correct horse battery staple")
	if err != nil {
		t.Fatalf("Failed to verify password: %v", err)
	}
	if !ok {
		t.Error("Expected correct password to verify")
	}

	ok, err = VerifyPassword(hash, "wrong password")
	if err != nil {
		t.Fatalf("Failed to verify password: %v", err)
	}
	if ok {
		t.Error("Expected wrong password to fail verification")
	}
}

func TestHashPassword_UniqueSalts(t *testing.T) {
	h1, err := HashPassword("same password")
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	h2, err := HashPassword("same password")
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	if h1 == h2 {
		t.Error("Expected different hashes for the same password (random salt)")
	}
}

func TestVerifyPassword_MalformedHash(t *testing.T) {
	if _, err := VerifyPassword("not-a-valid-hash", "anything"); err == nil {
		t.Error("Expected error for hash without argon2id prefix")
	}
	if _, err := VerifyPassword("argon2id$only-one-part", "anything"); err == nil {
		t.Error("Expected error for hash with missing segments")
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("short"); err == nil {
		t.Error("Expected error for password shorter than 8 characters")
	}
	if err := ValidatePassword("longenough"); err != nil {
		t.Errorf("Expected 8+ character password to pass, got %v", err)
	}
}
