package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		dir := t.TempDir()
		configFile := filepath.Join(dir, "config.json")
		content := `{
  "smtp": {"host": "smtp.example.com", "port": 587, "username": "user", "password": "secret"},
  "email": {"from": "user@example.com", "to": "reader@example.com"}
}`
		if err := os.WriteFile(configFile, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}

		cfg, err := loadConfig(configFile)
		if err != nil {
			t.Fatalf("loadConfig() error = %v", err)
		}
		if cfg.SMTP.Host != "smtp.example.com" || cfg.SMTP.Port != 587 {
			t.Errorf("SMTP = %+v", cfg.SMTP)
		}
		if cfg.Email.To != "reader@example.com" {
			t.Errorf("Email.To = %q, want reader@example.com", cfg.Email.To)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := loadConfig("/nonexistent/config.json"); err == nil {
			t.Error("loadConfig() expected error for missing file")
		}
	})

	t.Run("invalid JSON", func(t *testing.T) {
		dir := t.TempDir()
		configFile := filepath.Join(dir, "config.json")
		os.WriteFile(configFile, []byte("{{not json"), 0644)

		if _, err := loadConfig(configFile); err == nil {
			t.Error("loadConfig() expected error for invalid JSON")
		}
	})

	t.Run("missing email addresses", func(t *testing.T) {
		dir := t.TempDir()
		configFile := filepath.Join(dir, "config.json")
		os.WriteFile(configFile, []byte(`{"smtp": {"host": "h", "port": 25}}`), 0644)

		if _, err := loadConfig(configFile); err == nil {
			t.Error("loadConfig() expected error when email from/to missing")
		}
	})
}
