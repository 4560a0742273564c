package config

import (
	"log/slog"
	"os"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Server.Addr != ":9090" {
		t.Errorf("Addr = %q, want :9090", cfg.Server.Addr)
	}
	if cfg.Auth.TokenTTLHours != 24 {
		t.Errorf("TokenTTLHours = %d, want 24", cfg.Auth.TokenTTLHours)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
}

func TestLoad(t *testing.T) {
	f, err := os.CreateTemp("", "planner-config-*.yaml")
	if err != nil {
		t.Fatalf("create temp file: %v", err)
	}
	defer os.Remove(f.Name())

	content := `
server:
  addr: ":8080"
auth:
  jwt_secret: "abc"
log_level: debug
`
	if _, err := f.WriteString(content); err != nil {
		t.Fatalf("write config: %v", err)
	}
	f.Close()

	cfg, err := Load(f.Name())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Addr = %q, want :8080", cfg.Server.Addr)
	}
	if cfg.Auth.JWTSecret != "abc" {
		t.Errorf("JWTSecret = %q, want abc", cfg.Auth.JWTSecret)
	}
	// Unset fields keep defaults.
	if cfg.Auth.TokenTTLHours != 24 {
		t.Errorf("TokenTTLHours = %d, want default 24", cfg.Auth.TokenTTLHours)
	}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Errorf("SlogLevel = %v, want debug", cfg.SlogLevel())
	}
}

func TestLoad_Missing(t *testing.T) {
	if _, err := Load("/nonexistent/planner.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestSlogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"info":  slog.LevelInfo,
		"":      slog.LevelInfo,
	}
	for in, want := range cases {
		cfg := &Config{LogLevel: in}
		if got := cfg.SlogLevel(); got != want {
			t.Errorf("SlogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
