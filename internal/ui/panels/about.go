// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package panels

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/mikilabs/miki-tui/internal/ui/styles"
)

// =============================================================================
// ABOUT PANEL
// =============================================================================

// About is the static info screen.
type About struct {
	Theme   *styles.Theme
	Version string

	width  int
	height int
}

// NewAbout creates the about panel.
func NewAbout(theme *styles.Theme, version string) *About {
	return &About{Theme: theme, Version: version}
}

// SetSize updates the panel dimensions.
func (a *About) SetSize(width, height int) {
	a.width = width
	a.height = height
}

// View renders the about screen.
func (a *About) View() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		a.Theme.HeaderSubtitle.Render("About Miki"),
		"",
		"Miki is a conversational AI assistant with personas for writing,",
		"marketing, selling, and storytelling.",
		"",
		a.Theme.HelpText.Render("Version "+a.Version),
		a.Theme.HelpText.Render("Replies stream in character by character; committed messages never change."),
	)
}
