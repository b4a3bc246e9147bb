package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadUsesDefaultsAndYAMLOverrides(t *testing.T) {
	clearConfigEnv(t)

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")
	yaml := `
store:
  driver: memory
limits:
  interest_per_minute: 12
cache:
  categories_ttl: 2m
s3:
  public_base_url: https://cdn.example.com
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Store.Driver != StoreDriverMemory {
		t.Fatalf("unexpected store driver: %s", cfg.Store.Driver)
	}
	if cfg.Limits.InterestPerMinute != 12 {
		t.Fatalf("unexpected interest_per_minute: %d", cfg.Limits.InterestPerMinute)
	}
	if cfg.Limits.InterestPer10Sec != 10 {
		t.Fatalf("interest_per_10sec default should stay 10, got %d", cfg.Limits.InterestPer10Sec)
	}
	if cfg.Cache.CategoriesTTL != 2*time.Minute {
		t.Fatalf("unexpected categories ttl: %s", cfg.Cache.CategoriesTTL)
	}
	if cfg.S3.PublicBaseURL != "https://cdn.example.com" {
		t.Fatalf("unexpected public base url: %s", cfg.S3.PublicBaseURL)
	}
	if cfg.S3.MaxUploadBytes != 20<<20 {
		t.Fatalf("max upload default should stay 20 MiB, got %d", cfg.S3.MaxUploadBytes)
	}
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load config with missing file: %v", err)
	}

	if cfg.Store.Driver != StoreDriverPostgres {
		t.Fatalf("unexpected default driver: %s", cfg.Store.Driver)
	}
	if cfg.Limits.InterestPerMinute != 30 || cfg.Limits.InterestPer10Sec != 10 {
		t.Fatalf("unexpected limit defaults: %+v", cfg.Limits)
	}
	if cfg.Matches.InFlightTTL != 30*time.Second {
		t.Fatalf("unexpected inflight ttl default: %s", cfg.Matches.InFlightTTL)
	}
	if cfg.Listings.BrowseLimit != 200 {
		t.Fatalf("unexpected browse limit default: %d", cfg.Listings.BrowseLimit)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("STORE_DRIVER", "Memory")
	t.Setenv("REDIS_DISABLED", "true")
	t.Setenv("S3_PUBLIC_BASE_URL", "https://cdn.example.com/")
	t.Setenv("INTEREST_RATE_PER_10SEC", "0")
	t.Setenv("MATCH_INFLIGHT_TTL", "5s")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Store.Driver != StoreDriverMemory {
		t.Fatalf("unexpected store driver: %s", cfg.Store.Driver)
	}
	if cfg.Redis.Addr != "" {
		t.Fatalf("redis must be disabled, got addr %q", cfg.Redis.Addr)
	}
	if cfg.S3.PublicBaseURL != "https://cdn.example.com" {
		t.Fatalf("trailing slash must be trimmed: %s", cfg.S3.PublicBaseURL)
	}
	if cfg.Limits.InterestPer10Sec != 0 {
		t.Fatalf("unexpected interest_per_10sec: %d", cfg.Limits.InterestPer10Sec)
	}
	if cfg.Matches.InFlightTTL != 5*time.Second {
		t.Fatalf("unexpected inflight ttl: %s", cfg.Matches.InFlightTTL)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "bad duration", env: map[string]string{"MATCH_INFLIGHT_TTL": "soon"}},
		{name: "unknown driver", env: map[string]string{"STORE_DRIVER": "sqlite"}},
		{name: "negative limit", env: map[string]string{"INTEREST_RATE_PER_MINUTE": "-1"}},
		{name: "default secret in production", env: map[string]string{"APP_ENV": "prod"}},
		{name: "memory store in production", env: map[string]string{"APP_ENV": "prod", "JWT_SECRET": "s3cr3t", "STORE_DRIVER": "memory", "S3_PUBLIC_BASE_URL": "https://cdn.example.com"}},
		{name: "presigned media in production", env: map[string]string{"APP_ENV": "prod", "JWT_SECRET": "s3cr3t"}},
		{name: "relative public base url", env: map[string]string{"S3_PUBLIC_BASE_URL": "cdn.example.com/media"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			clearConfigEnv(t)
			for key, value := range tc.env {
				t.Setenv(key, value)
			}
			if _, err := Load(""); err == nil {
				t.Fatalf("expected an error")
			}
		})
	}
}

func TestLoadAcceptsProductionWithSecretAndPublicMedia(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "s3cr3t")
	t.Setenv("S3_PUBLIC_BASE_URL", "https://cdn.example.com/")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !cfg.IsProduction() {
		t.Fatalf("expected production config")
	}
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV",
		"HTTP_ADDR",
		"HTTP_READ_TIMEOUT",
		"HTTP_WRITE_TIMEOUT",
		"HTTP_IDLE_TIMEOUT",
		"LOG_LEVEL",
		"STORE_DRIVER",
		"POSTGRES_DSN",
		"REDIS_ADDR",
		"REDIS_PASSWORD",
		"REDIS_DB",
		"REDIS_DISABLED",
		"S3_ENDPOINT",
		"S3_ACCESS_KEY",
		"S3_SECRET_KEY",
		"S3_BUCKET",
		"S3_REGION",
		"S3_USE_SSL",
		"S3_PUBLIC_BASE_URL",
		"S3_MAX_UPLOAD_BYTES",
		"JWT_SECRET",
		"JWT_ISSUER",
		"JWT_ACCESS_TTL",
		"INTEREST_RATE_PER_MINUTE",
		"INTEREST_RATE_PER_10SEC",
		"CATEGORIES_CACHE_TTL",
		"MATCH_INFLIGHT_TTL",
	} {
		t.Setenv(key, "")
	}
}
