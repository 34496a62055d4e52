// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// =============================================================================
// DEFAULTS TESTS
// =============================================================================

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.BaseURL != "http://127.0.0.1:8000" {
		t.Errorf("BaseURL = %q, want 'http://127.0.0.1:8000'", cfg.Server.BaseURL)
	}
	if cfg.Server.TimeoutSeconds != 60 {
		t.Errorf("TimeoutSeconds = %d, want 60", cfg.Server.TimeoutSeconds)
	}
	if !cfg.Chat.Stream {
		t.Error("Stream should default to true")
	}
	if !cfg.Chat.Markdown {
		t.Error("Markdown should default to true")
	}
	if cfg.UI.Theme != "dark" {
		t.Errorf("Theme = %q, want 'dark'", cfg.UI.Theme)
	}
}

func TestDefaultValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("Default().Validate() = %v, want nil", err)
	}
}

// =============================================================================
// VALIDATION TESTS
// =============================================================================

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "bad base url",
			mutate:  func(c *Config) { c.Server.BaseURL = "not a url" },
			wantErr: "server.base_url",
		},
		{
			name:    "url without scheme",
			mutate:  func(c *Config) { c.Server.BaseURL = "127.0.0.1:8000" },
			wantErr: "server.base_url",
		},
		{
			name:    "negative timeout",
			mutate:  func(c *Config) { c.Server.TimeoutSeconds = -1 },
			wantErr: "server.timeout_seconds",
		},
		{
			name:    "bad theme",
			mutate:  func(c *Config) { c.UI.Theme = "neon" },
			wantErr: "ui.theme",
		},
		{
			name:    "negative word wrap",
			mutate:  func(c *Config) { c.UI.WordWrap = -5 },
			wantErr: "ui.word_wrap",
		},
		{
			name:    "negative history entries",
			mutate:  func(c *Config) { c.History.MaxEntries = -1 },
			wantErr: "history.max_entries",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

// =============================================================================
// LOAD/SAVE TESTS
// =============================================================================

func TestSaveAndLoadTOMLRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg := Default()
	cfg.Server.BaseURL = "http://10.0.0.5:9000"
	cfg.Chat.Stream = false
	cfg.UI.Theme = "light"

	if err := SaveTOML(cfg, path); err != nil {
		t.Fatalf("SaveTOML() error = %v", err)
	}

	// File must be private
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("config file mode = %o, want 0600", perm)
	}

	loaded := Default()
	if err := LoadTOML(loaded, path); err != nil {
		t.Fatalf("LoadTOML() error = %v", err)
	}

	if loaded.Server.BaseURL != "http://10.0.0.5:9000" {
		t.Errorf("BaseURL = %q", loaded.Server.BaseURL)
	}
	if loaded.Chat.Stream {
		t.Error("Stream should round-trip as false")
	}
	if loaded.UI.Theme != "light" {
		t.Errorf("Theme = %q, want 'light'", loaded.UI.Theme)
	}
}

func TestLoadTOMLFillsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	// Partial config: only the base URL is set
	content := "[server]\nbase_url = \"http://localhost:8080\"\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg := &Config{}
	if err := LoadTOML(cfg, path); err != nil {
		t.Fatalf("LoadTOML() error = %v", err)
	}

	if cfg.Server.BaseURL != "http://localhost:8080" {
		t.Errorf("BaseURL = %q", cfg.Server.BaseURL)
	}
	if cfg.Server.TimeoutSeconds != 60 {
		t.Errorf("TimeoutSeconds = %d, want default 60", cfg.Server.TimeoutSeconds)
	}
	if cfg.UI.Theme != "dark" {
		t.Errorf("Theme = %q, want default 'dark'", cfg.UI.Theme)
	}
}

func TestSaveAndLoadJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	cfg := Default()
	cfg.History.MaxEntries = 42

	if err := SaveJSON(cfg, path); err != nil {
		t.Fatalf("SaveJSON() error = %v", err)
	}

	loaded := Default()
	if err := LoadJSON(loaded, path); err != nil {
		t.Fatalf("LoadJSON() error = %v", err)
	}
	if loaded.History.MaxEntries != 42 {
		t.Errorf("MaxEntries = %d, want 42", loaded.History.MaxEntries)
	}
}

func TestLoadFromPathRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	content := "[ui]\ntheme = \"neon\"\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFromPath(path); err == nil {
		t.Error("LoadFromPath() should reject an invalid theme")
	}
}

// =============================================================================
// ENV OVERRIDE TESTS
// =============================================================================

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("CHATTERM_BASE_URL", "http://override:1234")
	t.Setenv("CHATTERM_STREAM", "false")
	t.Setenv("CHATTERM_MARKDOWN", "0")
	t.Setenv("CHATTERM_THEME", "light")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Server.BaseURL != "http://override:1234" {
		t.Errorf("BaseURL = %q", cfg.Server.BaseURL)
	}
	if cfg.Chat.Stream {
		t.Error("Stream should be overridden to false")
	}
	if cfg.Chat.Markdown {
		t.Error("Markdown should be overridden to false")
	}
	if cfg.UI.Theme != "light" {
		t.Errorf("Theme = %q, want 'light'", cfg.UI.Theme)
	}
}

func TestApplyEnvOverridesIgnoresUnset(t *testing.T) {
	t.Setenv("CHATTERM_BASE_URL", "")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Server.BaseURL != "http://127.0.0.1:8000" {
		t.Errorf("BaseURL = %q, want default", cfg.Server.BaseURL)
	}
}

// =============================================================================
// SINGLETON TESTS
// =============================================================================

// TestConfig_ConcurrentAccess tests that Global(), SetGlobal(), and
// ReloadGlobal() can be safely called concurrently.
// Run with: go test -race -v ./internal/config/
func TestConfig_ConcurrentAccess(t *testing.T) {
	ResetGlobalForTesting()

	var wg sync.WaitGroup

	// 50 writers using SetGlobal, 50 readers using Global
	for i := 0; i < 50; i++ {
		wg.Add(2)

		go func() {
			defer wg.Done()
			SetGlobal(Default())
		}()

		go func() {
			defer wg.Done()
			if cfg := Global(); cfg == nil {
				t.Error("Global() returned nil")
			}
		}()
	}

	wg.Wait()
	ResetGlobalForTesting()
}

func TestSetGlobal(t *testing.T) {
	ResetGlobalForTesting()
	defer ResetGlobalForTesting()

	custom := Default()
	custom.Server.BaseURL = "http://custom:8000"
	SetGlobal(custom)

	if Global().Server.BaseURL != "http://custom:8000" {
		t.Error("SetGlobal should set the instance Global returns")
	}
}

// =============================================================================
// PATH TESTS
// =============================================================================

func TestHistoryPath(t *testing.T) {
	cfg := Default()
	cfg.History.File = "/tmp/custom-history"

	path, err := cfg.HistoryPath()
	if err != nil {
		t.Fatalf("HistoryPath() error = %v", err)
	}
	if path != "/tmp/custom-history" {
		t.Errorf("HistoryPath() = %q, want override", path)
	}

	cfg.History.File = ""
	path, err = cfg.HistoryPath()
	if err != nil {
		t.Fatalf("HistoryPath() error = %v", err)
	}
	if !strings.HasSuffix(path, filepath.Join(".chatterm", "history")) {
		t.Errorf("HistoryPath() = %q, want under .chatterm", path)
	}
}
