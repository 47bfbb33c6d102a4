package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("BAKSHISH_API_URL", "http://localhost:8000/api/")
	t.Setenv("BAKSHISH_SESSION_BACKEND", "file")
	t.Setenv("BAKSHISH_PROFILE", "default")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.APIBaseURL != "http://localhost:8000/api/" {
		t.Errorf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.SessionBackend != SessionBackendFile {
		t.Errorf("SessionBackend = %q", cfg.SessionBackend)
	}
	if cfg.FakeAPIAddr != ":8000" {
		t.Errorf("FakeAPIAddr = %q, want :8000", cfg.FakeAPIAddr)
	}
	if cfg.SessionFile == "" {
		t.Error("SessionFile should default to a path under the user config dir")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("BAKSHISH_API_URL", "https://api.example.com/api/")
	t.Setenv("BAKSHISH_HTTP_TIMEOUT", "7s")
	t.Setenv("BAKSHISH_SESSION_BACKEND", "redis")
	t.Setenv("BAKSHISH_PROFILE", "driver")
	t.Setenv("DB_MAX_CONNECTIONS", "not-a-number")
	t.Setenv("NEW_RELIC_ENABLED", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.HTTPTimeout != 7*time.Second {
		t.Errorf("HTTPTimeout = %v, want 7s", cfg.HTTPTimeout)
	}
	if cfg.SessionBackend != SessionBackendRedis {
		t.Errorf("SessionBackend = %q", cfg.SessionBackend)
	}
	if cfg.Profile != "driver" {
		t.Errorf("Profile = %q", cfg.Profile)
	}
	if cfg.DBMaxConnections != 4 {
		t.Errorf("DBMaxConnections = %d, want default 4 on parse error", cfg.DBMaxConnections)
	}
	if !cfg.NewRelicEnabled {
		t.Error("NewRelicEnabled should be true")
	}
}

func TestValidate(t *testing.T) {
	base := Config{
		APIBaseURL:     "http://localhost:8000/api/",
		SessionBackend: SessionBackendFile,
		Profile:        "default",
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"bad scheme", func(c *Config) { c.APIBaseURL = "ftp://x" }, true},
		{"bad backend", func(c *Config) { c.SessionBackend = "sqlite" }, true},
		{"empty profile", func(c *Config) { c.Profile = "" }, true},
		{"negative timeout", func(c *Config) { c.HTTPTimeout = -time.Second }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.mutate(&c)
			if err := c.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
