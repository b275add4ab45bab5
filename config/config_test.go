package config

import (
	"os"
	"path/filepath"
	"testing"
)

func validConfig() *Config {
	return &Config{
		TMDB: TMDBConfig{
			APIKey:    "valid-api-key",
			Transport: "pooled",
		},
		Cache: CacheConfig{
			MaxAgeSeconds: 21600,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name:    "missing api key",
			mutate:  func(c *Config) { c.TMDB.APIKey = "" },
			wantErr: true,
		},
		{
			name:    "placeholder api key",
			mutate:  func(c *Config) { c.TMDB.APIKey = "your-api-key-here" },
			wantErr: true,
		},
		{
			name:    "unknown transport",
			mutate:  func(c *Config) { c.TMDB.Transport = "telegraph" },
			wantErr: true,
		},
		{
			name:   "simple transport",
			mutate: func(c *Config) { c.TMDB.Transport = "simple" },
		},
		{
			name:    "non-positive cache age",
			mutate:  func(c *Config) { c.Cache.MaxAgeSeconds = 0 },
			wantErr: true,
		},
		{
			name:    "invalid log level",
			mutate:  func(c *Config) { c.Logging.Level = "loud" },
			wantErr: true,
		},
		{
			name:    "invalid log format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := validate(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
tmdb:
  api_key: file-key
  language: de
logging:
  level: debug
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TMDB_API_KEY", "")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.TMDB.APIKey != "file-key" {
		t.Errorf("api key = %q, want file-key", cfg.TMDB.APIKey)
	}
	if cfg.TMDB.Language != "de" {
		t.Errorf("language = %q, want de", cfg.TMDB.Language)
	}
	if cfg.TMDB.Transport != "pooled" {
		t.Errorf("transport default = %q, want pooled", cfg.TMDB.Transport)
	}
	if cfg.Cache.MaxAgeSeconds != 21600 {
		t.Errorf("cache max age default = %d, want 21600", cfg.Cache.MaxAgeSeconds)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("log level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoadEnvOverridesKey(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("tmdb:\n  api_key: file-key\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("TMDB_API_KEY", "env-key")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.TMDB.APIKey != "env-key" {
		t.Errorf("api key = %q, want env-key", cfg.TMDB.APIKey)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load() expected error for missing file")
	}
}
