// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// =============================================================================
// DEFAULTS AND LOADING
// =============================================================================

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.ChatURL == "" {
		t.Error("Default chat URL should be set")
	}
	if cfg.Chat.RevealIntervalMS != 30 {
		t.Errorf("Default reveal interval: got %d, want 30", cfg.Chat.RevealIntervalMS)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should validate: %v", err)
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Missing file should not be an error: %v", err)
	}
	if cfg.Server.ChatURL != Default().Server.ChatURL {
		t.Errorf("Expected default chat URL, got %q", cfg.Server.ChatURL)
	}
}

func TestLoadFromPath_PartialFileFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[server]
chat_url = "wss://chat.example.com/ws"

[chat]
reveal_interval_ms = 50
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if cfg.Server.ChatURL != "wss://chat.example.com/ws" {
		t.Errorf("Chat URL not loaded: %q", cfg.Server.ChatURL)
	}
	if cfg.Chat.RevealIntervalMS != 50 {
		t.Errorf("Reveal interval not loaded: %d", cfg.Chat.RevealIntervalMS)
	}
	// Unset fields fall back to defaults.
	if cfg.Server.AuthURL != Default().Server.AuthURL {
		t.Errorf("Auth URL should default, got %q", cfg.Server.AuthURL)
	}
	if cfg.UI.Theme != "dark" {
		t.Errorf("Theme should default to dark, got %q", cfg.UI.Theme)
	}
}

func TestLoadFromPath_InvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("not [valid toml"), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if _, err := LoadFromPath(path); err == nil {
		t.Error("Expected decode error")
	}
}

// =============================================================================
// SAVE / ROUND TRIP
// =============================================================================

func TestSaveTOMLRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.Server.ChatURL = "wss://miki.example.com/ws"
	cfg.Server.AnonKey = "anon-123"
	cfg.Chat.DefaultPersona = "Lexi the Writer"
	cfg.UI.CompactMode = true

	if err := SaveTOML(cfg, path); err != nil {
		t.Fatalf("SaveTOML failed: %v", err)
	}

	fi, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if fi.Mode().Perm() != 0600 {
		t.Errorf("Config file perm: got %o, want 0600", fi.Mode().Perm())
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if loaded.Server.ChatURL != cfg.Server.ChatURL {
		t.Errorf("Chat URL round trip: got %q", loaded.Server.ChatURL)
	}
	if loaded.Server.AnonKey != "anon-123" {
		t.Errorf("Anon key round trip: got %q", loaded.Server.AnonKey)
	}
	if loaded.Chat.DefaultPersona != "Lexi the Writer" {
		t.Errorf("Persona round trip: got %q", loaded.Chat.DefaultPersona)
	}
	if !loaded.UI.CompactMode {
		t.Error("CompactMode round trip lost")
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid defaults", func(c *Config) {}, false},
		{"wss chat url", func(c *Config) { c.Server.ChatURL = "wss://x/ws" }, false},
		{"http chat url rejected", func(c *Config) { c.Server.ChatURL = "http://x/ws" }, true},
		{"ws auth url rejected", func(c *Config) { c.Server.AuthURL = "ws://x" }, true},
		{"negative reveal", func(c *Config) { c.Chat.RevealIntervalMS = -1 }, true},
		{"huge reveal", func(c *Config) { c.Chat.RevealIntervalMS = 5000 }, true},
		{"bad theme", func(c *Config) { c.UI.Theme = "neon" }, true},
		{"burst out of range", func(c *Config) { c.Chat.SendBurst = 500 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("Expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Unexpected validation error: %v", err)
			}
		})
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("MIKI_CHAT_URL", "wss://env.example.com/ws")
	t.Setenv("MIKI_PERSONA", "Sage the Storyteller")
	t.Setenv("MIKI_REVEAL_MS", "15")
	t.Setenv("MIKI_THEME", "light")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Server.ChatURL != "wss://env.example.com/ws" {
		t.Errorf("Env chat URL not applied: %q", cfg.Server.ChatURL)
	}
	if cfg.Chat.DefaultPersona != "Sage the Storyteller" {
		t.Errorf("Env persona not applied: %q", cfg.Chat.DefaultPersona)
	}
	if cfg.Chat.RevealIntervalMS != 15 {
		t.Errorf("Env reveal interval not applied: %d", cfg.Chat.RevealIntervalMS)
	}
	if cfg.UI.Theme != "light" {
		t.Errorf("Env theme not applied: %q", cfg.UI.Theme)
	}
}

// =============================================================================
// HELPERS
// =============================================================================

func TestRevealInterval(t *testing.T) {
	c := ChatConfig{RevealIntervalMS: 50}
	if c.RevealInterval() != 50*time.Millisecond {
		t.Errorf("Got %v, want 50ms", c.RevealInterval())
	}
	c.RevealIntervalMS = 0
	if c.RevealInterval() != 30*time.Millisecond {
		t.Errorf("Zero should fall back to 30ms, got %v", c.RevealInterval())
	}
}

func TestStringRedactsAnonKey(t *testing.T) {
	cfg := Default()
	cfg.Server.AnonKey = "secret-key"

	s := cfg.String()
	if containsString(s, "secret-key") {
		t.Error("String() must not leak the anon key")
	}
	if !containsString(s, "[REDACTED]") {
		t.Error("String() should mark the key as redacted")
	}
	// The original is untouched.
	if cfg.Server.AnonKey != "secret-key" {
		t.Error("String() must not mutate the config")
	}
}

func containsString(haystack, needle string) bool {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return true
		}
	}
	return false
}

// =============================================================================
// WATCHER
// =============================================================================

func TestWatcherReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := SaveTOML(Default(), path); err != nil {
		t.Fatalf("SaveTOML failed: %v", err)
	}

	reloaded := make(chan *Config, 4)
	w, err := NewWatcher(path, func(cfg *Config) { reloaded <- cfg })
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	defer w.Close()
	if err := w.Watch(); err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	updated := Default()
	updated.UI.Theme = "light"
	if err := SaveTOML(updated, path); err != nil {
		t.Fatalf("SaveTOML failed: %v", err)
	}

	select {
	case cfg := <-reloaded:
		if cfg.UI.Theme != "light" {
			t.Errorf("Reloaded theme: got %q, want light", cfg.UI.Theme)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Watcher never reloaded")
	}
}

// =============================================================================
// GLOBAL SINGLETON
// =============================================================================

func TestConfig_ConcurrentAccess(t *testing.T) {
	ResetGlobalForTesting()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)

		go func() {
			defer wg.Done()
			SetGlobal(Default())
		}()

		go func() {
			defer wg.Done()
			if Global() == nil {
				t.Error("Global() returned nil")
			}
		}()
	}
	wg.Wait()
}
