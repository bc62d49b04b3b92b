// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small shared helpers: crash-safe file writes for the
// config and credential caches, and rune-aware string trimming for terminal
// rendering.
package util
