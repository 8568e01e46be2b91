package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("GEMINI_MODEL", "")
	t.Setenv("TOKEN_EXPIRY", "")
	t.Setenv("TRANSACTION_TIMEOUT", "")

	cfg := Load()

	if cfg.Port != "3001" {
		t.Errorf("Expected default port 3001, got %q", cfg.Port)
	}
	if cfg.GeminiModel != "gemini-2.5-pro" {
		t.Errorf("Expected default Gemini model, got %q", cfg.GeminiModel)
	}
	if cfg.TokenExpiry != 7*24*time.Hour {
		t.Errorf("Expected default token expiry of 7 days, got %v", cfg.TokenExpiry)
	}
	if cfg.TransactionTimeout != 10*time.Second {
		t.Errorf("Expected default transaction timeout of 10s, got %v", cfg.TransactionTimeout)
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017/testdb")
	t.Setenv("JWT_SECRET", "supersecret")
	t.Setenv("TOKEN_EXPIRY", "1h")
	t.Setenv("TRANSACTION_TIMEOUT", "5s")

	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Expected port 8080, got %q", cfg.Port)
	}
	if cfg.MongoURI != "mongodb://localhost:27017/testdb" {
		t.Errorf("Unexpected Mongo URI: %q", cfg.MongoURI)
	}
	if cfg.JWTSecret != "supersecret" {
		t.Errorf("Unexpected JWT secret: %q", cfg.JWTSecret)
	}
	if cfg.TokenExpiry != time.Hour {
		t.Errorf("Expected token expiry 1h, got %v", cfg.TokenExpiry)
	}
	if cfg.TransactionTimeout != 5*time.Second {
		t.Errorf("Expected transaction timeout 5s, got %v", cfg.TransactionTimeout)
	}
}

func TestLoad_InvalidDurationFallsBack(t *testing.T) {
	t.Setenv("TOKEN_EXPIRY", "not-a-duration")

	cfg := Load()
	if cfg.TokenExpiry != 7*24*time.Hour {
		t.Errorf("Expected fallback to default expiry, got %v", cfg.TokenExpiry)
	}
}
