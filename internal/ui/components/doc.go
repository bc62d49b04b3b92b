// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides shared visual components for the miki TUI:
// the app header, the status bar, and the voice waveform.
package components
