package qstash

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadEnv_Defaults(t *testing.T) {
	t.Setenv("QSTASH_TOKEN", "from-env")
	for _, k := range []string{"QSTASH_URL", "QSTASH_TIMEOUT"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	cfg, err := LoadEnv(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}
	if cfg.Token != "from-env" {
		t.Errorf("Token = %q", cfg.Token)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.Timeout)
	}
	if cfg.URL != DefaultBaseURL {
		t.Errorf("URL = %q, want %q", cfg.URL, DefaultBaseURL)
	}
}

func TestLoadEnv_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "QSTASH_TOKEN=file-token\nQSTASH_URL=http://127.0.0.1:8080\nQSTASH_TIMEOUT=5s\nQSTASH_CURRENT_SIGNING_KEY=sig_current\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	// Registered so t.Setenv restores the originals after godotenv sets them.
	for _, k := range []string{"QSTASH_TOKEN", "QSTASH_URL", "QSTASH_TIMEOUT", "QSTASH_CURRENT_SIGNING_KEY"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	cfg, err := LoadEnv(path)
	if err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}
	if cfg.Token != "file-token" || cfg.URL != "http://127.0.0.1:8080" || cfg.Timeout != 5*time.Second {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.CurrentSigningKey != "sig_current" {
		t.Errorf("CurrentSigningKey = %q", cfg.CurrentSigningKey)
	}

	client, err := NewClient(cfg.Options()...)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	if got := client.GetConfig().BaseURL; got != "http://127.0.0.1:8080" {
		t.Errorf("BaseURL = %q", got)
	}
}

func TestLoadEnv_InvalidTimeout(t *testing.T) {
	t.Setenv("QSTASH_TIMEOUT", "soon")
	if _, err := LoadEnv(filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Error("expected error for invalid timeout")
	}
}
