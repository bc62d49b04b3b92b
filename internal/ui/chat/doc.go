// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat panel for the TUI.
//
// The panel owns a session controller and renders its transcript, the
// incremental reveal of the assistant's reply, and the input line. Session
// callbacks arrive on controller goroutines and are bridged into the Bubble
// Tea update loop through an event channel.
package chat
