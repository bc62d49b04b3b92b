// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/mikilabs/miki-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete miki-tui configuration.
type Config struct {
	Version string `toml:"version"`

	// Server endpoints for the Miki backend
	Server ServerConfig `toml:"server"`

	// Chat behavior
	Chat ChatConfig `toml:"chat"`

	// UI configuration
	UI UIConfig `toml:"ui"`
}

// ServerConfig contains the backend endpoints.
type ServerConfig struct {
	// ChatURL is the chat channel endpoint (ws:// or wss://)
	ChatURL string `toml:"chat_url"`
	// VoiceURL is the voice channel endpoint (ws:// or wss://)
	VoiceURL string `toml:"voice_url"`
	// AuthURL is the identity service base URL (http:// or https://)
	AuthURL string `toml:"auth_url"`
	// AnonKey is the public API key sent with identity requests
	AnonKey string `toml:"anon_key"`
}

// ChatConfig contains chat session behavior.
type ChatConfig struct {
	// RevealIntervalMS is the typing-reveal cadence in milliseconds per
	// character. 0 means the built-in default (30ms).
	RevealIntervalMS int `toml:"reveal_interval_ms"`
	// DefaultPersona is the persona preselected on startup. Empty means
	// the plain assistant.
	DefaultPersona string `toml:"default_persona"`
	// SendBurst is how many messages may be sent back to back before the
	// flood guard kicks in.
	SendBurst int `toml:"send_burst"`
	// GreetOnOpen seeds each new conversation with the persona's greeting.
	GreetOnOpen bool `toml:"greet_on_open"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light", "auto"
	Theme string `toml:"theme"`
	// Markdown renders assistant messages as markdown
	Markdown bool `toml:"markdown"`
	// CompactMode uses a more compact layout
	CompactMode bool `toml:"compact_mode"`
	// ShowTimestamps shows per-message timestamps in the transcript
	ShowTimestamps bool `toml:"show_timestamps"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1.0.0",

		Server: ServerConfig{
			ChatURL:  "ws://127.0.0.1:8000/ws",
			VoiceURL: "ws://127.0.0.1:8000/ws/voice-chat",
			AuthURL:  "http://127.0.0.1:8000/auth/v1",
			AnonKey:  "",
		},

		Chat: ChatConfig{
			RevealIntervalMS: 30,
			DefaultPersona:   "",
			SendBurst:        10,
			GreetOnOpen:      true,
		},

		UI: UIConfig{
			Theme:          "dark",
			Markdown:       true,
			CompactMode:    false,
			ShowTimestamps: true,
		},
	}
}

// RevealInterval returns the reveal cadence as a duration.
func (c *ChatConfig) RevealInterval() time.Duration {
	if c.RevealIntervalMS <= 0 {
		return 30 * time.Millisecond
	}
	return time.Duration(c.RevealIntervalMS) * time.Millisecond
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the miki configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".miki"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from ~/.miki/config.toml, falling back to
// defaults when the file is absent. Environment overrides apply last.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		cfg := Default()
		cfg.ApplyEnvOverrides()
		return cfg, err
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from a specific TOML file with full
// validation. A missing file is not an error; the defaults apply.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if _, statErr := os.Stat(path); statErr == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config file: %w", err)
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SetDefaults fills in missing or zero-value fields.
func (c *Config) SetDefaults() {
	defaults := Default()

	if c.Version == "" {
		c.Version = defaults.Version
	}
	if c.Server.ChatURL == "" {
		c.Server.ChatURL = defaults.Server.ChatURL
	}
	if c.Server.VoiceURL == "" {
		c.Server.VoiceURL = defaults.Server.VoiceURL
	}
	if c.Server.AuthURL == "" {
		c.Server.AuthURL = defaults.Server.AuthURL
	}
	if c.Chat.RevealIntervalMS == 0 {
		c.Chat.RevealIntervalMS = defaults.Chat.RevealIntervalMS
	}
	if c.Chat.SendBurst == 0 {
		c.Chat.SendBurst = defaults.Chat.SendBurst
	}
	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file. The write is atomic and
// the file is created 0600 since it may carry the anon key.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, "# miki configuration file")
	fmt.Fprintln(&buf, "# Generated by miki - edit with care")
	fmt.Fprintln(&buf, "")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	errs = append(errs, validateURL("server.chat_url", c.Server.ChatURL, "ws", "wss")...)
	errs = append(errs, validateURL("server.voice_url", c.Server.VoiceURL, "ws", "wss")...)
	errs = append(errs, validateURL("server.auth_url", c.Server.AuthURL, "http", "https")...)

	if c.Chat.RevealIntervalMS < 0 || c.Chat.RevealIntervalMS > 1000 {
		errs = append(errs, ValidationError{
			Field:   "chat.reveal_interval_ms",
			Message: fmt.Sprintf("must be 0-1000, got %d", c.Chat.RevealIntervalMS),
		})
	}
	if c.Chat.SendBurst < 0 || c.Chat.SendBurst > 100 {
		errs = append(errs, ValidationError{
			Field:   "chat.send_burst",
			Message: fmt.Sprintf("must be 0-100, got %d", c.Chat.SendBurst),
		})
	}

	validThemes := map[string]bool{"dark": true, "light": true, "auto": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: dark, light, auto", c.UI.Theme),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateURL(field, raw string, schemes ...string) ValidateErrors {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ValidateErrors{{Field: field, Message: fmt.Sprintf("invalid URL: %v", err)}}
	}
	for _, s := range schemes {
		if u.Scheme == s {
			return nil
		}
	}
	return ValidateErrors{{
		Field:   field,
		Message: fmt.Sprintf("scheme must be %s, got '%s'", strings.Join(schemes, " or "), u.Scheme),
	}}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - MIKI_CHAT_URL: overrides server.chat_url
//   - MIKI_VOICE_URL: overrides server.voice_url
//   - MIKI_AUTH_URL: overrides server.auth_url
//   - MIKI_ANON_KEY: overrides server.anon_key
//   - MIKI_PERSONA: overrides chat.default_persona
//   - MIKI_REVEAL_MS: overrides chat.reveal_interval_ms
//   - MIKI_THEME: overrides ui.theme
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("MIKI_CHAT_URL"); v != "" {
		c.Server.ChatURL = v
	}
	if v := os.Getenv("MIKI_VOICE_URL"); v != "" {
		c.Server.VoiceURL = v
	}
	if v := os.Getenv("MIKI_AUTH_URL"); v != "" {
		c.Server.AuthURL = v
	}
	if v := os.Getenv("MIKI_ANON_KEY"); v != "" {
		c.Server.AnonKey = v
	}
	if v := os.Getenv("MIKI_PERSONA"); v != "" {
		c.Chat.DefaultPersona = v
	}
	if v := os.Getenv("MIKI_REVEAL_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			c.Chat.RevealIntervalMS = ms
		}
	}
	if v := os.Getenv("MIKI_THEME"); v != "" {
		c.UI.Theme = v
	}
}

// =============================================================================
// HELPERS
// =============================================================================

// Clone creates a copy of the configuration. All fields are value types, so
// a struct copy is a full copy.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String returns the config rendered as TOML with the anon key redacted, for
// status output and debugging.
func (c *Config) String() string {
	safe := c.Clone()
	if safe.Server.AnonKey != "" {
		safe.Server.AnonKey = "[REDACTED]"
	}
	var buf bytes.Buffer
	toml.NewEncoder(&buf).Encode(safe)
	return buf.String()
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance.
// Loads configuration on first access. Thread-safe.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
			cfg = Default()
		}
		globalConfig = cfg
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state for testing.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
