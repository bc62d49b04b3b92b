// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

// =============================================================================
// CONTROLLER STATE
// =============================================================================

// State is the lifecycle state of a chat session.
type State int

const (
	// StateIdle is the initial state before the session is opened.
	StateIdle State = iota
	// StateConnecting means the channel is being established.
	StateConnecting
	// StateReady means the channel is open and a message can be sent.
	StateReady
	// StateGenerating means a response is being awaited or revealed.
	StateGenerating
	// StateErrored is a dead end until the user restarts the session.
	StateErrored
	// StateClosed is terminal; the session has been torn down.
	StateClosed
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateReady:
		return "ready"
	case StateGenerating:
		return "generating"
	case StateErrored:
		return "errored"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the session can make no further progress without
// user action.
func (s State) Terminal() bool {
	return s == StateErrored || s == StateClosed
}
