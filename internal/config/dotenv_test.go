package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadUsesDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr() != ":8080" {
		t.Fatalf("expected default addr, got %q", cfg.Addr())
	}
	if cfg.JWTExpiry != 24*time.Hour {
		t.Fatalf("expected default jwt expiry, got %v", cfg.JWTExpiry)
	}
}

func TestLoadOverridesFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_EXPIRY", "1h")
	t.Setenv("DB_MAX_OPEN_CONNS", "3")
	t.Setenv("APP_TIMEZONE", "America/New_York")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr() != ":9090" {
		t.Fatalf("expected :9090, got %q", cfg.Addr())
	}
	if cfg.JWTExpiry != time.Hour {
		t.Fatalf("expected 1h expiry, got %v", cfg.JWTExpiry)
	}
	if cfg.DBMaxOpenConns != 3 {
		t.Fatalf("expected 3 open conns, got %d", cfg.DBMaxOpenConns)
	}
	loc, err := cfg.Location()
	if err != nil || loc.String() != "America/New_York" {
		t.Fatalf("expected New York location, got %v (%v)", loc, err)
	}
}

func TestLoadRejectsDefaultSecretsInProduction(t *testing.T) {
	t.Setenv("ENV", "production")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for default secrets in production")
	}
}

func TestLoadRejectsSharedSecrets(t *testing.T) {
	t.Setenv("JWT_SECRET", "same")
	t.Setenv("JWT_REFRESH_SECRET", "same")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for identical secrets")
	}
}

func TestLoadRejectsBadTimezone(t *testing.T) {
	t.Setenv("APP_TIMEZONE", "Mars/Olympus")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unknown timezone")
	}
}

func TestLoadDotEnvMissingFile(t *testing.T) {
	if err := LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("expected nil for missing file, got %v", err)
	}
}

func TestLoadDotEnvDoesNotOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("PICKLEBALL_TEST_A=file\nPICKLEBALL_TEST_B=file\n"), 0o644); err != nil {
		t.Fatalf("write env: %v", err)
	}
	t.Setenv("PICKLEBALL_TEST_A", "process")
	t.Cleanup(func() { os.Unsetenv("PICKLEBALL_TEST_B") })

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("load dotenv: %v", err)
	}
	if got := os.Getenv("PICKLEBALL_TEST_A"); got != "process" {
		t.Fatalf("expected existing value kept, got %q", got)
	}
	if got := os.Getenv("PICKLEBALL_TEST_B"); got != "file" {
		t.Fatalf("expected value from file, got %q", got)
	}
}
