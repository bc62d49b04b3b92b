// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package socket

import "encoding/json"

// =============================================================================
// WIRE FORMAT
// =============================================================================

// ChatRequest is the outbound payload for one user message.
// PersonaPrompt conditions the backend's response and is omitted when the
// session has no persona.
type ChatRequest struct {
	Message       string `json:"message"`
	PersonaPrompt string `json:"personaPrompt,omitempty"`
}

// ChatResponse is the inbound payload carrying one full assistant response.
type ChatResponse struct {
	Response string `json:"response"`
}

// StopEvent signals end of utterance on the voice channel, sent after the
// final audio chunk.
type StopEvent struct {
	Event string `json:"event"`
}

// NewStopEvent creates the end-of-utterance marker.
func NewStopEvent() StopEvent {
	return StopEvent{Event: "stop"}
}

// FallbackResponse is committed in place of a missing, empty, or unparseable
// inbound response. The controller never leaves a response blank.
const FallbackResponse = "No response received."

// DecodeResponse extracts the assistant text from an inbound frame.
// A malformed frame is recovered locally, never propagated as an error.
func DecodeResponse(data []byte) string {
	var resp ChatResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return FallbackResponse
	}
	if resp.Response == "" {
		return FallbackResponse
	}
	return resp.Response
}
