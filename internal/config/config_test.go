package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml")); err == nil {
		t.Fatal("Load succeeded with an explicit missing config file")
	}
}

func TestLoadDefaults(t *testing.T) {
	// Without an explicit path a missing file falls back to defaults.
	cfg, err := loadFromDir(t, "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 8484 {
		t.Errorf("Server.Port = %d, want 8484", cfg.Server.Port)
	}
	if cfg.Database.Path != "./data/requestarr.db" {
		t.Errorf("Database.Path = %q", cfg.Database.Path)
	}
	if cfg.OpenAI.Model != "gpt-4.1-nano" {
		t.Errorf("OpenAI.Model = %q", cfg.OpenAI.Model)
	}
	if cfg.Pending.TTLMinutes != 30 {
		t.Errorf("Pending.TTLMinutes = %d, want 30", cfg.Pending.TTLMinutes)
	}
	if cfg.Telegram.PollTimeout != 30 {
		t.Errorf("Telegram.PollTimeout = %d, want 30", cfg.Telegram.PollTimeout)
	}
}

// loadFromDir runs Load from a temp working directory so a config.yaml in
// the repository root cannot leak into the test.
func loadFromDir(t *testing.T, content string) (*Config, error) {
	t.Helper()

	dir := t.TempDir()
	if content != "" {
		if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write config file: %v", err)
		}
	}

	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir failed: %v", err)
	}
	t.Cleanup(func() { os.Chdir(wd) })

	return Load("")
}

func TestLoadFromFile(t *testing.T) {
	content := `
server:
  port: 9000
telegram:
  token: "123:abc"
overseerr:
  url: "http://localhost:5055/api/v1"
  api_key: "secret"
openai:
  api_key: "sk-test"
  model: "gpt-4o-mini"
pending:
  ttl_minutes: 10
`
	cfg, err := loadFromDir(t, content)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Telegram.Token != "123:abc" {
		t.Errorf("Telegram.Token = %q", cfg.Telegram.Token)
	}
	if cfg.Overseerr.URL != "http://localhost:5055/api/v1" {
		t.Errorf("Overseerr.URL = %q", cfg.Overseerr.URL)
	}
	if cfg.OpenAI.Model != "gpt-4o-mini" {
		t.Errorf("OpenAI.Model = %q", cfg.OpenAI.Model)
	}
	if cfg.Pending.TTLMinutes != 10 {
		t.Errorf("Pending.TTLMinutes = %d, want 10", cfg.Pending.TTLMinutes)
	}

	// Untouched sections keep their defaults.
	if cfg.OpenAI.BaseURL != "https://api.openai.com/v1" {
		t.Errorf("OpenAI.BaseURL = %q", cfg.OpenAI.BaseURL)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("REQUESTARR_SERVER_PORT", "7000")
	t.Setenv("REQUESTARR_OVERSEERR_API_KEY", "env-key")

	cfg, err := loadFromDir(t, "server:\n  port: 9000\n")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 7000 {
		t.Errorf("Server.Port = %d, want env override 7000", cfg.Server.Port)
	}
	if cfg.Overseerr.APIKey != "env-key" {
		t.Errorf("Overseerr.APIKey = %q, want env-key", cfg.Overseerr.APIKey)
	}
}

func TestAddress(t *testing.T) {
	sc := ServerConfig{Host: "127.0.0.1", Port: 8484}
	if got := sc.Address(); got != "127.0.0.1:8484" {
		t.Errorf("Address() = %q, want 127.0.0.1:8484", got)
	}
}
