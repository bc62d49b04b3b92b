// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mikilabs/miki-tui/internal/session"
)

// =============================================================================
// EVENT BRIDGE
// =============================================================================

// Events bridges session controller callbacks into the Bubble Tea loop.
// Callbacks run on controller goroutines; the channel hands them to the
// update loop, which re-arms WaitForEvent after each message.
type Events struct {
	ch chan tea.Msg
}

// NewEvents creates an event bridge.
func NewEvents() *Events {
	return &Events{ch: make(chan tea.Msg, 64)}
}

// Handlers returns session handlers that feed this bridge.
func (e *Events) Handlers() session.Handlers {
	return session.Handlers{
		OnStateChange: func(state session.State) {
			e.ch <- SessionStateMsg{State: state}
		},
		OnTranscriptChange: func() {
			e.ch <- TranscriptChangedMsg{}
		},
		OnPartial: func(partial string) {
			// Partials are high volume and each one supersedes the last,
			// so dropping under backpressure is harmless.
			select {
			case e.ch <- PartialMsg{Text: partial}:
			default:
			}
		},
		OnSendFailed: func(err error) {
			e.ch <- SendFailedMsg{Err: err}
		},
		OnError: func(err error) {
			e.ch <- SessionErrorMsg{Err: err}
		},
	}
}

// WaitForEvent returns a command that delivers the next session event.
func (e *Events) WaitForEvent() tea.Cmd {
	return func() tea.Msg {
		return <-e.ch
	}
}
