// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for miki.
//
// Settings live in ~/.miki/config.toml with sensible defaults, environment
// variable overrides, and validation.
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (MIKI_*)
//   - ~/.miki/config.toml
//   - Built-in defaults
//
// # Usage
//
// Load configuration:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Access settings:
//
//	endpoint := cfg.Server.ChatURL
//	interval := cfg.Chat.RevealInterval()
//
// A Watcher reloads the file when it changes on disk, so endpoint or theme
// edits take effect without a restart.
package config
