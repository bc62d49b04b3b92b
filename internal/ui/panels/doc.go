// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package panels holds the non-chat screens of the miki TUI: welcome, home,
// explore, library, profile, login, signup, voice, and about.
//
// Each panel is a small Bubble Tea component. Panels never talk to the
// session or storage layers directly; they emit messages that the root
// application model routes.
package panels
