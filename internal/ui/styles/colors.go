// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the miki TUI.
// All colors use Lip Gloss AdaptiveColor for automatic light/dark detection;
// the dark palette mirrors the Miki web client.
package styles

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// PRIMARY ACCENT COLORS
// =============================================================================

// Violet - Primary accent, brand color, selections
var Violet = lipgloss.AdaptiveColor{Light: "#7C3AED", Dark: "#8B5CF6"}

// VioletDeep - Darker violet for backgrounds and borders
var VioletDeep = lipgloss.AdaptiveColor{Light: "#5B21B6", Dark: "#4C1D95"}

// Sky - Secondary accent, user highlights, links
var Sky = lipgloss.AdaptiveColor{Light: "#0284C7", Dark: "#38BDF8"}

// Emerald - Success states, connected indicator
var Emerald = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#34D399"}

// =============================================================================
// SEMANTIC COLORS
// =============================================================================

// Rose - Errors, disconnects, danger states
var Rose = lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FB7185"}

// Amber - Warnings, generating indicator
var Amber = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}

// =============================================================================
// SURFACE COLORS
// =============================================================================

// Surface - Main background (deep navy in the web client)
var Surface = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#0C0920"}

// SurfaceRaised - Panels, cards, the input bar
var SurfaceRaised = lipgloss.AdaptiveColor{Light: "#F5F5F5", Dark: "#1D1D42"}

// Overlay - Borders, separators
var Overlay = lipgloss.AdaptiveColor{Light: "#E5E5E5", Dark: "#2E2B5E"}

// =============================================================================
// TEXT COLORS
// =============================================================================

// TextPrimary - Main body text
var TextPrimary = lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#E5E7EB"}

// TextSecondary - Labels, less prominent text
var TextSecondary = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#A5B4FC"}

// TextMuted - Hints, timestamps, very subtle text
var TextMuted = lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#6B7280"}

// TextInverse - Text on colored backgrounds
var TextInverse = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#0C0920"}

// =============================================================================
// MESSAGE BUBBLE COLORS
// =============================================================================

// User message bubble - Violet tones, right-aligned like the web client
var UserBubbleBg = lipgloss.AdaptiveColor{Light: "#EDE9FE", Dark: "#4C1D95"}
var UserBubbleFg = lipgloss.AdaptiveColor{Light: "#5B21B6", Dark: "#EDE9FE"}
var UserBubbleBorder = lipgloss.AdaptiveColor{Light: "#8B5CF6", Dark: "#8B5CF6"}

// Assistant message bubble - Raised surface tones
var AssistantBubbleBg = lipgloss.AdaptiveColor{Light: "#F5F3FF", Dark: "#1D1D42"}
var AssistantBubbleFg = lipgloss.AdaptiveColor{Light: "#3730A3", Dark: "#E0E7FF"}
var AssistantBubbleBorder = lipgloss.AdaptiveColor{Light: "#C4B5FD", Dark: "#6366F1"}

// =============================================================================
// STATUS INDICATORS
// =============================================================================

// StatusIndicatorSet contains ASCII indicators for status states, a visual
// cue beyond color for colorblind users.
type StatusIndicatorSet struct {
	Success string
	Error   string
	Warning string
	Info    string
}

// StatusIndicators provides shape indicators alongside colors.
var StatusIndicators = StatusIndicatorSet{
	Success: "[OK]",
	Error:   "[X]",
	Warning: "[!]",
	Info:    "[i]",
}

// RenderSuccess renders a success message with its indicator.
func RenderSuccess(message string) string {
	style := lipgloss.NewStyle().Foreground(Emerald).Bold(true)
	return style.Render(StatusIndicators.Success + " " + message)
}

// RenderError renders an error message with its indicator.
func RenderError(message string) string {
	style := lipgloss.NewStyle().Foreground(Rose).Bold(true)
	return style.Render(StatusIndicators.Error + " " + message)
}

// RenderWarning renders a warning message with its indicator.
func RenderWarning(message string) string {
	style := lipgloss.NewStyle().Foreground(Amber).Bold(true)
	return style.Render(StatusIndicators.Warning + " " + message)
}

// RenderInfo renders an info message with its indicator.
func RenderInfo(message string) string {
	style := lipgloss.NewStyle().Foreground(Sky).Bold(true)
	return style.Render(StatusIndicators.Info + " " + message)
}
