// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// =============================================================================
// SENDER TYPE
// =============================================================================

// Sender identifies who produced a message.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// String returns the string representation of the sender.
func (s Sender) String() string {
	return string(s)
}

// DisplayName returns a human-readable name for the sender.
func (s Sender) DisplayName() string {
	switch s {
	case SenderUser:
		return "You"
	case SenderAssistant:
		return "Miki"
	default:
		return string(s)
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message is a single committed entry in a session transcript.
// All fields are set at creation time and never change. Partially revealed
// assistant text never appears as a Message; it lives only in transient
// reveal state until the reveal completes.
type Message struct {
	ID        string    `json:"id"`
	Sender    Sender    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage creates a message with a generated ID and the current time.
func NewMessage(sender Sender, text string) *Message {
	return &Message{
		ID:        generateID(),
		Sender:    sender,
		Text:      text,
		Timestamp: time.Now(),
	}
}

// NewUserMessage creates a message sent by the user.
func NewUserMessage(text string) *Message {
	return NewMessage(SenderUser, text)
}

// NewAssistantMessage creates a message from a fully revealed response.
func NewAssistantMessage(text string) *Message {
	return NewMessage(SenderAssistant, text)
}

// =============================================================================
// MESSAGE METHODS
// =============================================================================

// IsUser reports whether the message was sent by the user.
func (m *Message) IsUser() bool {
	return m.Sender == SenderUser
}

// DisplayTime formats the creation timestamp for rendering.
// The stored timestamp is never recomputed; only its presentation is.
func (m *Message) DisplayTime() string {
	return m.Timestamp.Format("3:04 PM")
}

// Preview returns a truncated single-line preview of the message text.
// Uses rune-based truncation to handle Unicode correctly.
func (m *Message) Preview(maxLen int) string {
	runes := []rune(m.Text)
	if len(runes) <= maxLen {
		return m.Text
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// generateID creates a unique message ID.
func generateID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return "msg_" + hex.EncodeToString(bytes)
}
