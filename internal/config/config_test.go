package config

import (
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"SESSION_SECRET", "REDIS_URL", "PORT", "GIN_MODE",
		"UPLOAD_DIR", "MAX_UPLOAD_SIZE", "SESSION_TTL_MINUTES", "BCRYPT_COST",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != "3000" {
		t.Fatalf("Port = %q, want 3000", cfg.Port)
	}
	if cfg.RedisURL != "redis://127.0.0.1:6379/0" {
		t.Fatalf("RedisURL = %q", cfg.RedisURL)
	}
	if cfg.BcryptCost != 10 {
		t.Fatalf("BcryptCost = %d, want 10", cfg.BcryptCost)
	}
	if cfg.SessionTTLMinutes != 720 {
		t.Fatalf("SessionTTLMinutes = %d, want 720", cfg.SessionTTLMinutes)
	}
}

func TestValidateReleaseRequiresSecret(t *testing.T) {
	cfg := &Config{
		GinMode:           "release",
		RedisURL:          "redis://127.0.0.1:6379/0",
		BcryptCost:        10,
		SessionTTLMinutes: 720,
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing SESSION_SECRET in release mode")
	}

	cfg.SessionSecret = "secret"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := &Config{BcryptCost: 99, SessionTTLMinutes: 720}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for out-of-range bcrypt cost")
	}

	cfg = &Config{BcryptCost: 10, SessionTTLMinutes: 0}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for non-positive session TTL")
	}
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("NOTEKEEP_TEST_STR", "value")
	if got := getEnv("NOTEKEEP_TEST_STR", "fallback"); got != "value" {
		t.Fatalf("getEnv = %q", got)
	}
	if got := getEnv("NOTEKEEP_TEST_MISSING", "fallback"); got != "fallback" {
		t.Fatalf("getEnv fallback = %q", got)
	}

	t.Setenv("NOTEKEEP_TEST_INT", "42")
	if got := getEnvAsInt("NOTEKEEP_TEST_INT", 7); got != 42 {
		t.Fatalf("getEnvAsInt = %d", got)
	}
	t.Setenv("NOTEKEEP_TEST_INT", "not-a-number")
	if got := getEnvAsInt("NOTEKEEP_TEST_INT", 7); got != 7 {
		t.Fatalf("getEnvAsInt fallback = %d", got)
	}

	t.Setenv("NOTEKEEP_TEST_INT64", "1048576")
	if got := getEnvAsInt64("NOTEKEEP_TEST_INT64", 1); got != 1048576 {
		t.Fatalf("getEnvAsInt64 = %d", got)
	}
}
