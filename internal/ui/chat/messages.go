// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/mikilabs/miki-tui/internal/session"
)

// =============================================================================
// SESSION MESSAGES
// =============================================================================

// SessionStateMsg reports a session state transition.
type SessionStateMsg struct {
	State session.State
}

// TranscriptChangedMsg signals that a message was committed to the transcript.
type TranscriptChangedMsg struct{}

// PartialMsg carries the growing reveal prefix. An empty Text clears it.
type PartialMsg struct {
	Text string
}

// SendFailedMsg reports that the transport rejected an outbound message.
// The optimistic transcript entry stays; only the reply will never come.
type SendFailedMsg struct {
	Err error
}

// SessionErrorMsg reports a transport fault.
type SessionErrorMsg struct {
	Err error
}
