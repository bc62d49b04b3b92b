// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the application.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// ==========================================================================
	// APPLICATION CONTAINER STYLES
	// ==========================================================================

	App       lipgloss.Style
	Container lipgloss.Style

	// ==========================================================================
	// HEADER AND NAVIGATION STYLES
	// ==========================================================================

	Header         lipgloss.Style
	HeaderTitle    lipgloss.Style
	HeaderSubtitle lipgloss.Style
	Tab            lipgloss.Style
	TabActive      lipgloss.Style

	// ==========================================================================
	// MESSAGE BUBBLE STYLES
	// ==========================================================================

	UserBubble      lipgloss.Style
	AssistantBubble lipgloss.Style
	PartialBubble   lipgloss.Style
	BubbleMeta      lipgloss.Style
	FeedbackBar     lipgloss.Style

	// ==========================================================================
	// INPUT AREA STYLES
	// ==========================================================================

	InputContainer lipgloss.Style
	InputPrompt    lipgloss.Style
	InputDisabled  lipgloss.Style

	// ==========================================================================
	// STATUS BAR STYLES
	// ==========================================================================

	StatusBar    lipgloss.Style
	StatusReady  lipgloss.Style
	StatusBusy   lipgloss.Style
	StatusError  lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style

	// ==========================================================================
	// CARD AND LIST STYLES
	// ==========================================================================

	Card         lipgloss.Style
	CardSelected lipgloss.Style
	CardTitle    lipgloss.Style
	CardBody     lipgloss.Style
	ListItem     lipgloss.Style
	ListSelected lipgloss.Style
	ListMeta     lipgloss.Style

	// ==========================================================================
	// FORM STYLES
	// ==========================================================================

	FormLabel lipgloss.Style
	FormError lipgloss.Style
	FormHint  lipgloss.Style

	// ==========================================================================
	// MISC STYLES
	// ==========================================================================

	ErrorBox  lipgloss.Style
	Waveform  lipgloss.Style
	HelpText  lipgloss.Style
	Spinner   lipgloss.Style
	LogoStyle lipgloss.Style
}

// NewTheme creates a new theme with all styles configured.
func NewTheme() *Theme {
	colorProfile := termenv.ColorProfile()
	t := &Theme{
		IsDark:       termenv.HasDarkBackground(),
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
	}
	t.initStyles()
	return t
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	// App container
	t.App = lipgloss.NewStyle()
	t.Container = lipgloss.NewStyle().Padding(0, 1)

	// Header and navigation
	t.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(Violet).
		Padding(0, 2)

	t.HeaderTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Violet)

	t.HeaderSubtitle = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true)

	t.Tab = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Padding(0, 1)

	t.TabActive = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextInverse).
		Background(Violet).
		Padding(0, 1)

	// Message bubbles
	t.UserBubble = lipgloss.NewStyle().
		Foreground(UserBubbleFg).
		Background(UserBubbleBg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(UserBubbleBorder).
		Padding(0, 2).
		MarginLeft(4)

	t.AssistantBubble = lipgloss.NewStyle().
		Foreground(AssistantBubbleFg).
		Background(AssistantBubbleBg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(AssistantBubbleBorder).
		Padding(0, 2).
		MarginRight(4)

	t.PartialBubble = t.AssistantBubble.
		BorderForeground(Amber)

	t.BubbleMeta = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.FeedbackBar = lipgloss.NewStyle().
		Foreground(TextMuted).
		MarginRight(4)

	// Input area
	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.InputPrompt = lipgloss.NewStyle().
		Bold(true).
		Foreground(Violet)

	t.InputDisabled = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	// Status bar
	t.StatusBar = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Background(SurfaceRaised).
		Padding(0, 1)

	t.StatusReady = lipgloss.NewStyle().Bold(true).Foreground(Emerald)
	t.StatusBusy = lipgloss.NewStyle().Bold(true).Foreground(Amber)
	t.StatusError = lipgloss.NewStyle().Bold(true).Foreground(Rose)

	t.ShortcutKey = lipgloss.NewStyle().
		Bold(true).
		Foreground(Sky)

	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Cards and lists
	t.Card = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 2).
		Margin(0, 1)

	t.CardSelected = t.Card.
		BorderForeground(Violet).
		Bold(true)

	t.CardTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Violet)

	t.CardBody = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.ListItem = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Padding(0, 1)

	t.ListSelected = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextInverse).
		Background(Violet).
		Padding(0, 1)

	t.ListMeta = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Forms
	t.FormLabel = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextSecondary)

	t.FormError = lipgloss.NewStyle().
		Foreground(Rose)

	t.FormHint = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	// Misc
	t.ErrorBox = lipgloss.NewStyle().
		Foreground(Rose).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Rose).
		Padding(0, 2)

	t.Waveform = lipgloss.NewStyle().
		Foreground(Violet)

	t.HelpText = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.Spinner = lipgloss.NewStyle().
		Foreground(Violet)

	t.LogoStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Violet)
}
