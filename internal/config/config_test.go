package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
	if cfg.Port != 8318 {
		t.Fatalf("expected default port 8318, got %d", cfg.Port)
	}
	if cfg.Store.Backend != BackendGitHub {
		t.Fatalf("expected default backend github, got %q", cfg.Store.Backend)
	}
	if cfg.GitHub.Path != "users.json" || cfg.GitHub.Branch != "main" {
		t.Fatalf("expected default github coordinates, got %+v", cfg.GitHub)
	}
	if cfg.Auth.Expiry != 6*time.Hour {
		t.Fatalf("expected default expiry 6h, got %s", cfg.Auth.Expiry)
	}
	if cfg.Mail.Host != "smtp.gmail.com" || cfg.Mail.Port != 587 {
		t.Fatalf("expected default mail endpoint, got %+v", cfg.Mail)
	}
}

func TestLoad_FileValues(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	content := "" +
		"port: 9000\n" +
		"store:\n  backend: database\n" +
		"database-dsn: ./gateway.db\n" +
		"auth:\n  secret: file-secret\n  expiry: 1h\n" +
		"mail:\n  to: helpdesk@example.com\n"
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != 9000 || cfg.Store.Backend != BackendDatabase {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.Auth.Secret != "file-secret" || cfg.Auth.Expiry != time.Hour {
		t.Fatalf("unexpected auth config: %+v", cfg.Auth)
	}
	if cfg.Mail.To != "helpdesk@example.com" {
		t.Fatalf("unexpected mail config: %+v", cfg.Mail)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv(EnvSigningSecret, "env-secret")
	t.Setenv(EnvTokenExpiry, "2h")
	t.Setenv(EnvStoreBackend, BackendRedis)
	t.Setenv(EnvRedisAddr, "localhost:6379")

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("auth:\n  secret: file-secret\n  expiry: 1h\n"), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Auth.Secret != "env-secret" {
		t.Fatalf("expected secret=env-secret, got %q", cfg.Auth.Secret)
	}
	if cfg.Auth.Expiry != 2*time.Hour {
		t.Fatalf("expected expiry=2h, got %s", cfg.Auth.Expiry)
	}
	if cfg.Store.Backend != BackendRedis || cfg.Redis.Addr != "localhost:6379" {
		t.Fatalf("expected redis backend from env, got %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	base := Config{}
	applyDefaults(&base)

	if err := base.Validate(); err == nil {
		t.Fatalf("expected error for missing signing secret")
	}

	base.Auth.Secret = "s"
	if err := base.Validate(); err == nil {
		t.Fatalf("expected error for incomplete github coordinates")
	}

	base.GitHub.Owner = "acme"
	base.GitHub.Repo = "users-store"
	base.GitHub.Token = "tok"
	if err := base.Validate(); err != nil {
		t.Fatalf("expected valid github config, got %v", err)
	}

	base.Store.Backend = "bogus"
	if err := base.Validate(); err == nil {
		t.Fatalf("expected error for unknown backend")
	}

	base.Store.Backend = BackendDatabase
	if err := base.Validate(); err == nil {
		t.Fatalf("expected error for missing dsn")
	}
	base.DatabaseDSN = "./gateway.db"
	if err := base.Validate(); err != nil {
		t.Fatalf("expected valid database config, got %v", err)
	}
}
