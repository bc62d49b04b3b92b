// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the miki command surface: argument parsing and the
// non-TUI commands (chat REPL, login, status, version).
package cli
