package config

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("PORT", "")
		os.Unsetenv("PORT")
		t.Setenv("SHUTDOWN_TIMEOUT", "")
		os.Unsetenv("SHUTDOWN_TIMEOUT")

		cfg, err := Load(log.Default())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cfg.Port != "8080" {
			t.Fatalf("expected default port 8080, got %s", cfg.Port)
		}
		if cfg.ShutdownTimeout != 10*time.Second {
			t.Fatalf("expected default shutdown timeout, got %s", cfg.ShutdownTimeout)
		}
	})

	t.Run("reads environment", func(t *testing.T) {
		t.Setenv("PORT", "9999")
		t.Setenv("CORS_ORIGINS", "http://a.example,http://b.example")

		cfg, err := Load(log.Default())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cfg.Port != "9999" {
			t.Fatalf("expected port 9999, got %s", cfg.Port)
		}
		if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://b.example" {
			t.Fatalf("expected two origins, got %v", cfg.CORSOrigins)
		}
	})
}

func TestParseEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := strings.Join([]string{
		"# comment",
		"export FOO_FROM_DOTENV=bar",
		`QUOTED_FROM_DOTENV="hello world"`,
		"ALREADY_SET_VAR=from-file",
		"",
		"not a key value line",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}

	t.Setenv("ALREADY_SET_VAR", "from-env")
	t.Setenv("FOO_FROM_DOTENV", "")
	os.Unsetenv("FOO_FROM_DOTENV")
	t.Setenv("QUOTED_FROM_DOTENV", "")
	os.Unsetenv("QUOTED_FROM_DOTENV")

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open .env: %v", err)
	}
	defer file.Close()

	if err := parseEnvFile(log.Default(), file); err != nil {
		t.Fatalf("parse env file: %v", err)
	}

	if got := os.Getenv("FOO_FROM_DOTENV"); got != "bar" {
		t.Fatalf("expected bar, got %q", got)
	}
	if got := os.Getenv("QUOTED_FROM_DOTENV"); got != "hello world" {
		t.Fatalf("expected quotes stripped, got %q", got)
	}
	if got := os.Getenv("ALREADY_SET_VAR"); got != "from-env" {
		t.Fatalf("expected existing value preserved, got %q", got)
	}
}
