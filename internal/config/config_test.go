package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "privyd.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "server:\n  address: \"\"\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Address != ":8080" {
		t.Fatalf("unexpected address: %q", cfg.Server.Address)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
	if len(cfg.Logging.Outputs) != 1 || cfg.Logging.Outputs[0] != "stdout" {
		t.Fatalf("unexpected outputs: %v", cfg.Logging.Outputs)
	}
	if cfg.Privy.Timeout.Std() != 30*time.Second {
		t.Fatalf("unexpected timeout: %v", cfg.Privy.Timeout)
	}
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
server:
  address: ":9090"
logging:
  level: debug
  format: text
  outputs: [stderr]
  audit:
    enabled: true
    path: /var/log/privyd/audit.log
    max_size_mb: 10
    max_backups: 3
privy:
  base_url: https://staging.privy.example/v1
  timeout: 5s
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Address != ":9090" {
		t.Fatalf("unexpected address: %q", cfg.Server.Address)
	}
	if !cfg.Logging.Audit.Enabled || cfg.Logging.Audit.MaxBackups != 3 {
		t.Fatalf("unexpected audit config: %+v", cfg.Logging.Audit)
	}
	if cfg.Privy.BaseURL != "https://staging.privy.example/v1" {
		t.Fatalf("unexpected base url: %q", cfg.Privy.BaseURL)
	}
	if cfg.Privy.Timeout.Std() != 5*time.Second {
		t.Fatalf("unexpected timeout: %v", cfg.Privy.Timeout)
	}

	lc := cfg.LoggerConfig()
	if lc.Level != "debug" || lc.Audit.Path != "/var/log/privyd/audit.log" {
		t.Fatalf("unexpected logger config: %+v", lc)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Fatal("expected error for empty path")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
	if _, err := Load(writeConfig(t, "server: [not a mapping")); err == nil {
		t.Fatal("expected error for malformed yaml")
	}
}
