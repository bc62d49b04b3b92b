// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package socket owns the real-time channel between the client and the Miki
// backend.
//
// A Conn wraps one websocket connection for one session: open, send, receive,
// close. State transitions are observable only through callbacks, never
// polled. There is no automatic reconnect; reopening after a transport error
// is a user-initiated action on a fresh Conn.
package socket
