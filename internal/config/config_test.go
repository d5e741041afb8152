package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Hirebase.PageLimit != 100 {
		t.Errorf("Hirebase.PageLimit = %d, want 100", cfg.Hirebase.PageLimit)
	}
	if cfg.Hirebase.Retries != 3 || cfg.Hirebase.RetryDelay != time.Second {
		t.Errorf("retry budget = %d/%s, want 3/1s", cfg.Hirebase.Retries, cfg.Hirebase.RetryDelay)
	}
	if cfg.Sync.StaleAfterDays != 8 {
		t.Errorf("Sync.StaleAfterDays = %d, want 8", cfg.Sync.StaleAfterDays)
	}
	if cfg.Sync.PlateauPages != 5 {
		t.Errorf("Sync.PlateauPages = %d, want 5", cfg.Sync.PlateauPages)
	}
	if cfg.Retention.MaxAgeDays != 7 {
		t.Errorf("Retention.MaxAgeDays = %d, want 7", cfg.Retention.MaxAgeDays)
	}
	if cfg.Cache.FacetTTL != 30*time.Minute {
		t.Errorf("Cache.FacetTTL = %s, want 30m", cfg.Cache.FacetTTL)
	}
	if cfg.Hirebase.Endpoint != "" || cfg.Hirebase.APIKey != "" {
		t.Error("upstream credentials must have no defaults")
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9090
sync:
  stale_after_days: 3
hirebase:
  page_limit: 50
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Sync.StaleAfterDays != 3 {
		t.Errorf("Sync.StaleAfterDays = %d, want 3", cfg.Sync.StaleAfterDays)
	}
	if cfg.Hirebase.PageLimit != 50 {
		t.Errorf("Hirebase.PageLimit = %d, want 50", cfg.Hirebase.PageLimit)
	}
	// Untouched sections keep their defaults.
	if cfg.Retention.MaxAgeDays != 7 {
		t.Errorf("Retention.MaxAgeDays = %d, want default 7", cfg.Retention.MaxAgeDays)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("JOB_API_ENDPOINT", "https://api.example.com/jobs")
	t.Setenv("JOB_API_KEY", "test-key")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Hirebase.Endpoint != "https://api.example.com/jobs" {
		t.Errorf("Endpoint = %q", cfg.Hirebase.Endpoint)
	}
	if cfg.Hirebase.APIKey != "test-key" {
		t.Errorf("APIKey = %q", cfg.Hirebase.APIKey)
	}
}

func TestDatabaseDSN(t *testing.T) {
	pg := DatabaseConfig{
		Driver: "postgres", Host: "db", Port: 5432,
		User: "u", Password: "p", Name: "jobs", SSLMode: "disable",
	}
	want := "host=db port=5432 user=u password=p dbname=jobs sslmode=disable"
	if got := pg.DSN(); got != want {
		t.Errorf("postgres DSN = %q, want %q", got, want)
	}

	lite := DatabaseConfig{Driver: "sqlite", Path: "./data/jobs.db"}
	if got := lite.DSN(); got != "./data/jobs.db" {
		t.Errorf("sqlite DSN = %q, want path", got)
	}
}
