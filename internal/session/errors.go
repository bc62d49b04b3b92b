// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import "errors"

// Sentinel errors for session-level operations. Connection-level failures
// (NotConnected, SendFailed, transport faults) carry the socket package's
// error taxonomy instead.
var (
	// ErrEmptyInput means the message text was empty after trimming.
	ErrEmptyInput = errors.New("message text is empty")

	// ErrBusy means a send was attempted while a response is generating.
	// The UI disables sending in that state; this guards the controller.
	ErrBusy = errors.New("a response is still generating")

	// ErrRateLimited means sends arrived faster than the flood guard allows.
	ErrRateLimited = errors.New("sending too fast, slow down")

	// ErrAlreadyStarted means OpenSession was called twice.
	ErrAlreadyStarted = errors.New("session already started")

	// ErrDisconnected means the channel closed without a local teardown.
	ErrDisconnected = errors.New("disconnected from server")
)
