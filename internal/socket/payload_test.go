// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package socket

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestDecodeResponse(t *testing.T) {
	if got := DecodeResponse([]byte(`{"response": "hello"}`)); got != "hello" {
		t.Errorf("Expected 'hello', got %q", got)
	}
}

func TestDecodeResponseMissingField(t *testing.T) {
	if got := DecodeResponse([]byte(`{}`)); got != FallbackResponse {
		t.Errorf("Missing response field should fall back, got %q", got)
	}
}

func TestDecodeResponseEmptyField(t *testing.T) {
	if got := DecodeResponse([]byte(`{"response": ""}`)); got != FallbackResponse {
		t.Errorf("Empty response should fall back, got %q", got)
	}
}

func TestDecodeResponseMalformed(t *testing.T) {
	if got := DecodeResponse([]byte(`not json at all`)); got != FallbackResponse {
		t.Errorf("Malformed frame should fall back, got %q", got)
	}
}

func TestChatRequestOmitsEmptyPersona(t *testing.T) {
	data, err := json.Marshal(ChatRequest{Message: "Hi"})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "personaPrompt") {
		t.Errorf("Empty persona prompt should be omitted, got %s", data)
	}

	data, err = json.Marshal(ChatRequest{Message: "Hi", PersonaPrompt: "You're Lexi."})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"personaPrompt":"You're Lexi."`) {
		t.Errorf("Persona prompt should be carried, got %s", data)
	}
}

func TestStopEvent(t *testing.T) {
	data, err := json.Marshal(NewStopEvent())
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"event":"stop"}` {
		t.Errorf("Unexpected stop event encoding: %s", data)
	}
}
