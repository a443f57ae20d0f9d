package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./libcat.db" {
			t.Errorf("expected database path ./libcat.db, got %s", config.Database.Path)
		}

		if config.API.BaseURL != "http://localhost:8080" {
			t.Errorf("expected api base_url http://localhost:8080, got %s", config.API.BaseURL)
		}

		if config.API.Timeout() != 15*time.Second {
			t.Errorf("expected 15s timeout, got %v", config.API.Timeout())
		}

		if config.View.PageSize != 10 {
			t.Errorf("expected page size 10, got %d", config.View.PageSize)
		}

		if config.View.BooksSort != "id-desc" || config.View.ReadersSort != "id-asc" {
			t.Errorf("unexpected default sorts %q and %q", config.View.BooksSort, config.View.ReadersSort)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Database.Path != defaultConfig.Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); !errors.Is(err, os.ErrExist) {
			t.Errorf("creating config file again should fail with ErrExist, got %v", err)
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[api]
base_url = "https://library.example.com"
workers = 8

[database]
path = "/custom/path.db"

[view]
page_size = 25
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.API.BaseURL != "https://library.example.com" {
			t.Errorf("expected custom base_url, got %s", config.API.BaseURL)
		}
		if config.API.Workers != 8 {
			t.Errorf("expected 8 workers, got %d", config.API.Workers)
		}
		if config.Database.Path != "/custom/path.db" {
			t.Errorf("expected database path /custom/path.db, got %s", config.Database.Path)
		}
		if config.View.PageSize != 25 {
			t.Errorf("expected page size 25, got %d", config.View.PageSize)
		}
		if config.View.BooksSort != "id-desc" {
			t.Errorf("missing keys should keep defaults, got books_sort %q", config.View.BooksSort)
		}
	})

	t.Run("LoadConfig rejects invalid values", func(t *testing.T) {
		tc := []struct {
			name string
			body string
		}{
			{name: "zero page size", body: "[view]\npage_size = 0\n"},
			{name: "empty base url", body: "[api]\nbase_url = \"\"\n"},
			{name: "negative timeout", body: "[api]\ntimeout_seconds = -1\n"},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				configPath := filepath.Join(t.TempDir(), "config.toml")
				if err := os.WriteFile(configPath, []byte(tt.body), 0644); err != nil {
					t.Fatalf("failed to write test config: %v", err)
				}
				if _, err := LoadConfig(configPath); !errors.Is(err, ErrInvalidConfig) {
					t.Errorf("expected ErrInvalidConfig, got %v", err)
				}
			})
		}
	})

	t.Run("LoadConfig missing file", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("ApplyEnv", func(t *testing.T) {
		t.Setenv(EnvAPIURL, "http://api.internal:9000")
		t.Setenv(EnvDBPath, "/var/lib/libcat.db")

		config := DefaultConfig()
		config.ApplyEnv()

		if config.API.BaseURL != "http://api.internal:9000" {
			t.Errorf("expected env base url, got %s", config.API.BaseURL)
		}
		if config.Database.Path != "/var/lib/libcat.db" {
			t.Errorf("expected env db path, got %s", config.Database.Path)
		}
	})
}
