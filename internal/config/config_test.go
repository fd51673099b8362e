package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvAPIURL, EnvDB, EnvTimeout, EnvOutput, EnvLog} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestDefaults(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	cfg, err := load(filepath.Join(dir, "missing.yaml"), false, filepath.Join(dir, ".env"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIURL != DefaultAPIURL || cfg.Timeout != 30*time.Second || cfg.Output != "text" {
		t.Errorf("unexpected defaults %+v", cfg)
	}
}

func TestMissingExplicitFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	if _, err := load(filepath.Join(dir, "missing.yaml"), true, filepath.Join(dir, ".env")); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}

func TestPrecedence(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `
api_url: https://yaml.example.com/api
timeout: 5s
output: yaml
db: /tmp/yaml.db
`)
	dotenv := writeFile(t, dir, ".env", "SWYCLE_OUTPUT=json\nSWYCLE_DB=/tmp/dotenv.db\n")
	t.Setenv(EnvDB, "/tmp/env.db")

	cfg, err := load(path, true, dotenv)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	tests := []struct {
		name, got, want string
	}{
		{"api url from yaml", cfg.APIURL, "https://yaml.example.com/api"},
		{"output from .env", cfg.Output, "json"},
		{"db from environment", cfg.DBPath, "/tmp/env.db"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.name, tt.got, tt.want)
		}
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("timeout = %s, want 5s", cfg.Timeout)
	}
}

func TestInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		env  map[string]string
	}{
		{"unknown key", "colour: red\n", nil},
		{"bad timeout in file", "timeout: soon\n", nil},
		{"bad output", "", map[string]string{EnvOutput: "xml"}},
		{"bad url", "", map[string]string{EnvAPIURL: "localhost:5000"}},
		{"bad env timeout", "", map[string]string{EnvTimeout: "-1"}},
		{"negative timeout", "timeout: -5s\n", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			dir := t.TempDir()
			path := writeFile(t, dir, "config.yaml", tt.yaml)
			if _, err := load(path, true, filepath.Join(dir, ".env")); err == nil {
				t.Error("expected error")
			}
		})
	}
}
