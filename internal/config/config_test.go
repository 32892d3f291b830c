package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestFromEnvOverridesDefaults(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("ENABLE_GUEST_AUTH", "false")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("SESSION_IDLE_TIMEOUT", "45s")
	t.Setenv("MAX_UPLOAD_BYTES", "1024")
	t.Setenv("FALLBACK_POLICY", "FIRST")

	cfg := FromEnv()
	if cfg.HTTPAddr != ":9090" || cfg.EnableGuestAuth {
		t.Fatalf("unexpected cfg %+v", cfg)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Fatalf("cors = %q", cfg.CORSOrigins)
	}
	if cfg.SessionIdleTimeout != 45*time.Second || cfg.MaxUploadBytes != 1024 || cfg.FallbackPolicy != "first" {
		t.Fatalf("unexpected cfg %+v", cfg)
	}
	if cfg.DBDriver != "sqlite" || cfg.SessionSweepInterval != time.Minute {
		t.Fatalf("defaults lost: %+v", cfg)
	}
}

func TestLoadYAMLThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quiz.yaml")
	yml := "http_addr: \":7000\"\nfallback_policy: none\nsession_idle_timeout: 10m\nenable_ocr: true\n"
	if err := os.WriteFile(path, []byte(yml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("HTTP_ADDR", ":7001")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPAddr != ":7001" {
		t.Fatalf("env must win over file, got %q", cfg.HTTPAddr)
	}
	if cfg.FallbackPolicy != "none" || cfg.SessionIdleTimeout != 10*time.Minute || !cfg.EnableOCR {
		t.Fatalf("file values not applied: %+v", cfg)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quiz.yaml")
	os.WriteFile(path, []byte("http_adr: \":1\"\n"), 0o600)
	t.Setenv("CONFIG_FILE", path)
	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	cfg := Defaults()
	cfg.FallbackPolicy = "majority"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected invalid fallback policy")
	}
	cfg = Defaults()
	cfg.DBDriver = "mysql"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected invalid driver")
	}
	if err := Defaults().Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
}
