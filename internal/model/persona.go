// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// =============================================================================
// PERSONA TYPE
// =============================================================================

// Persona is a named conditioning context for the assistant.
// It is selected before a session starts and immutable for the session's
// lifetime. The PromptPrefix rides along with every outbound message so the
// backend can condition its responses.
type Persona struct {
	Name         string `json:"name"`
	PromptPrefix string `json:"prompt_prefix"`
}

// Greeting returns the opening line shown when a persona chat starts.
func (p Persona) Greeting() string {
	if p.Name == "" || p.Name == DefaultAssistantName {
		return "Hey there! I'm Miki, your AI assistant. How can I help you today?"
	}
	return "Hi! I'm " + p.Name + ". How can I assist you today?"
}

// IsZero reports whether the persona carries no conditioning context.
func (p Persona) IsZero() bool {
	return p.Name == "" && p.PromptPrefix == ""
}

// DefaultAssistantName is the plain assistant identity used when no persona
// has been selected.
const DefaultAssistantName = "Miki"

// =============================================================================
// BUILT-IN PERSONAS
// =============================================================================

// BuiltinPersonas returns the personas offered on the home panel.
// The slice is freshly allocated on every call so callers cannot mutate the
// built-in set.
func BuiltinPersonas() []Persona {
	return []Persona{
		{
			Name:         "Lexi the Writer",
			PromptPrefix: "You're Lexi, a helpful and creative writer. Help users write insightful articles and blogs.",
		},
		{
			Name:         "Mark the Marketer",
			PromptPrefix: "You're Mark, a witty AI who crafts catchy and effective marketing content.",
		},
		{
			Name:         "Ella the Seller",
			PromptPrefix: "You're Ella, an e-commerce expert who writes persuasive product descriptions that convert.",
		},
		{
			Name:         "Sage the Storyteller",
			PromptPrefix: "You're Sage, a calm, imaginative assistant that helps users write compelling stories.",
		},
	}
}
