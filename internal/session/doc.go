// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session orchestrates one real-time conversation.
//
// The Controller owns exactly one connection, one transcript, and one reveal
// scheduler, and exposes the user-facing operations: open the session, send
// a message, tear everything down. It runs the state machine
//
//	Idle -> Connecting -> Ready -> Generating -> Ready -> ... -> Closed
//
// with Errored reachable from Connecting and Ready. All asynchronous effects
// arrive through callbacks; nothing blocks and nothing polls.
package session
