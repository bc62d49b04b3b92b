// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"testing"
)

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestNewUserMessage(t *testing.T) {
	msg := NewUserMessage("Hello")

	if msg.Sender != SenderUser {
		t.Errorf("Expected sender %q, got %q", SenderUser, msg.Sender)
	}
	if msg.Text != "Hello" {
		t.Errorf("Expected text 'Hello', got %q", msg.Text)
	}
	if msg.Timestamp.IsZero() {
		t.Error("Timestamp should be set at creation")
	}
	if !strings.HasPrefix(msg.ID, "msg_") {
		t.Errorf("Expected msg_ prefixed ID, got %q", msg.ID)
	}
}

func TestNewAssistantMessage(t *testing.T) {
	msg := NewAssistantMessage("Hello!")

	if msg.Sender != SenderAssistant {
		t.Errorf("Expected sender %q, got %q", SenderAssistant, msg.Sender)
	}
	if msg.IsUser() {
		t.Error("Assistant message should not report IsUser")
	}
}

func TestMessageIDsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		msg := NewUserMessage("x")
		if seen[msg.ID] {
			t.Fatalf("Duplicate message ID %q", msg.ID)
		}
		seen[msg.ID] = true
	}
}

func TestMessagePreview(t *testing.T) {
	msg := NewUserMessage("The quick brown fox jumps over the lazy dog")

	preview := msg.Preview(15)
	if len([]rune(preview)) != 15 {
		t.Errorf("Expected 15-rune preview, got %d runes (%q)", len([]rune(preview)), preview)
	}
	if !strings.HasSuffix(preview, "...") {
		t.Errorf("Expected ellipsis suffix, got %q", preview)
	}

	short := NewUserMessage("hi")
	if got := short.Preview(15); got != "hi" {
		t.Errorf("Short text should be unchanged, got %q", got)
	}
}

func TestMessagePreviewUnicode(t *testing.T) {
	msg := NewUserMessage("世界世界世界世界世界")
	preview := msg.Preview(7)
	if len([]rune(preview)) != 7 {
		t.Errorf("Expected 7 runes, got %d", len([]rune(preview)))
	}
}

func TestSenderDisplayName(t *testing.T) {
	if got := SenderUser.DisplayName(); got != "You" {
		t.Errorf("Expected 'You', got %q", got)
	}
	if got := SenderAssistant.DisplayName(); got != "Miki" {
		t.Errorf("Expected 'Miki', got %q", got)
	}
}

// =============================================================================
// PERSONA TESTS
// =============================================================================

func TestPersonaGreeting(t *testing.T) {
	p := Persona{Name: "Lexi the Writer", PromptPrefix: "You're Lexi."}
	if got := p.Greeting(); !strings.Contains(got, "Lexi the Writer") {
		t.Errorf("Persona greeting should name the persona, got %q", got)
	}

	var zero Persona
	if got := zero.Greeting(); !strings.Contains(got, "Miki") {
		t.Errorf("Default greeting should name Miki, got %q", got)
	}
}

func TestPersonaIsZero(t *testing.T) {
	var zero Persona
	if !zero.IsZero() {
		t.Error("Empty persona should be zero")
	}
	if (Persona{Name: "Sage the Storyteller"}).IsZero() {
		t.Error("Named persona should not be zero")
	}
}

func TestBuiltinPersonasIsolated(t *testing.T) {
	first := BuiltinPersonas()
	first[0].Name = "mutated"

	second := BuiltinPersonas()
	if second[0].Name == "mutated" {
		t.Error("BuiltinPersonas should return an isolated copy")
	}
	if len(second) != 4 {
		t.Errorf("Expected 4 built-in personas, got %d", len(second))
	}
}
