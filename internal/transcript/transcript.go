// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transcript

import (
	"sync"

	"github.com/mikilabs/miki-tui/internal/model"
)

// =============================================================================
// TRANSCRIPT STORE
// =============================================================================

// Store holds the ordered, append-only message log for one session.
// It is exclusively owned by one session controller; the mutex exists because
// socket reads and reveal completions hand messages off from goroutines.
type Store struct {
	mu         sync.Mutex
	messages   []*model.Message
	lastSender model.Sender
}

// NewStore creates an empty transcript store.
func NewStore() *Store {
	return &Store{}
}

// =============================================================================
// WRITE PATH
// =============================================================================

// Append adds a message to the end of the transcript.
// Entries are never reordered or mutated after this point.
func (s *Store) Append(msg *model.Message) {
	if msg == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
	s.lastSender = msg.Sender
}

// =============================================================================
// READ PATH
// =============================================================================

// All returns the ordered messages as a snapshot copy.
// Appends after the call are not visible through the returned slice.
func (s *Store) All() []*model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// LastMessage returns the most recently appended message, or false if the
// transcript is empty.
func (s *Store) LastMessage() (*model.Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.messages) == 0 {
		return nil, false
	}
	return s.messages[len(s.messages)-1], true
}

// LastSender returns who sent the most recent message.
// Tracked explicitly rather than re-derived from the transcript tail, so the
// empty-transcript case is unambiguous: the second return is false until the
// first append.
func (s *Store) LastSender() (model.Sender, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.messages) == 0 {
		return "", false
	}
	return s.lastSender, true
}

// Len returns the number of committed messages.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}
