// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// noEnvFile keeps a stray .env in the package directory out of the tests.
const noEnvFile = "-env-file="

func TestParseFlags_EnvVars(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://test")
	t.Setenv("DATABASE_TYPE", "postgres")
	t.Setenv("PLANNER_USER_ID", "1001")
	t.Setenv("PERSIST_DELAY_MS", "750")
	t.Setenv("CACHE_TYPE", "redis")

	cfg, err := ParseFlags([]string{noEnvFile})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.DatabaseType != "postgres" {
		t.Errorf("expected postgres, got %q", cfg.DatabaseType)
	}
	if cfg.UserID != "1001" {
		t.Errorf("expected user 1001, got %q", cfg.UserID)
	}
	if cfg.PersistDelay != 750*time.Millisecond {
		t.Errorf("expected 750ms, got %v", cfg.PersistDelay)
	}
	if cfg.CacheType != "redis" || cfg.RedisAddr != "localhost:6379" {
		t.Errorf("unexpected cache settings %q %q", cfg.CacheType, cfg.RedisAddr)
	}
}

func TestParseFlags_CLIOverridesEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://env")
	t.Setenv("PLANNER_TIMEZONE", "Asia/Tokyo")

	cfg, err := ParseFlags([]string{noEnvFile, "-d", "file:test.db", "-timezone", "Europe/Berlin", "-persist-delay", "50"})
	if err != nil {
		t.Fatal(err)
	}

	// CLI should override env
	if cfg.DatabaseURL != "file:test.db" {
		t.Errorf("CLI should override env: expected file:test.db, got %q", cfg.DatabaseURL)
	}
	if cfg.Timezone != "Europe/Berlin" {
		t.Errorf("CLI should override env: expected Europe/Berlin, got %q", cfg.Timezone)
	}
	if cfg.PersistDelay != 50*time.Millisecond {
		t.Errorf("expected 50ms, got %v", cfg.PersistDelay)
	}
}

func TestParseFlags_Defaults(t *testing.T) {
	cfg, err := ParseFlags([]string{noEnvFile, "-d", "planner.db"})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name, got, want string
	}{
		{"database type", cfg.DatabaseType, "sqlite"},
		{"cache type", cfg.CacheType, "sqlite"},
		{"cache path", cfg.CachePath, "planner-cache.db"},
		{"timezone", cfg.Timezone, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, tt.got)
			}
		})
	}
	if cfg.PersistDelay != 0 {
		t.Errorf("expected zero delay so the debouncer default applies, got %v", cfg.PersistDelay)
	}
	if cfg.UsesAPI() {
		t.Error("expected SQL backend")
	}
}

func TestParseFlags_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		env  map[string]string
	}{
		{"no backend", []string{noEnvFile}, nil},
		{"bad delay env", []string{noEnvFile, "-d", "x.db"}, map[string]string{"PERSIST_DELAY_MS": "soon"}},
		{"negative delay", []string{noEnvFile, "-d", "x.db", "-persist-delay", "-5"}, nil},
		{"init data without token", []string{noEnvFile, "-d", "x.db", "-init-data", "user=1"}, nil},
		{"unknown flag", []string{"-port", "3318"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DATABASE_URL", "")
			t.Setenv("API_URL", "")
			t.Setenv("BOT_TOKEN", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := ParseFlags(tt.args); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestParseFlags_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "planner.env")
	content := "API_URL=https://api.example.test/rest/v1\nAPI_KEY=from-file\nBOT_USERNAME=MeetBot\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write env file: %v", err)
	}
	// godotenv skips variables that exist even when empty, so unset them.
	// t.Setenv restores the originals afterwards.
	for _, key := range []string{"API_URL", "API_KEY"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	t.Setenv("BOT_USERNAME", "FromEnv")

	cfg, err := ParseFlags([]string{"-env-file", path})
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.UsesAPI() || cfg.APIKey != "from-file" {
		t.Errorf("expected API settings from file, got %q %q", cfg.APIURL, cfg.APIKey)
	}
	if cfg.BotUsername != "FromEnv" {
		t.Errorf("env file must not override set variables, got %q", cfg.BotUsername)
	}
}

func TestParseFlags_MissingEnvFile(t *testing.T) {
	if _, err := ParseFlags([]string{"-env-file", filepath.Join(t.TempDir(), "none.env"), "-d", "x.db"}); err != nil {
		t.Errorf("missing env file should be ignored, got %v", err)
	}
}
