// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package panels

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/mikilabs/miki-tui/internal/ui/styles"
)

// =============================================================================
// WELCOME PANEL
// =============================================================================

const logo = `
  ███╗   ███╗ ██╗ ██╗  ██╗ ██╗
  ████╗ ████║ ██║ ██║ ██╔╝ ██║
  ██╔████╔██║ ██║ █████╔╝  ██║
  ██║╚██╔╝██║ ██║ ██╔═██╗  ██║
  ██║ ╚═╝ ██║ ██║ ██║  ██╗ ██║
  ╚═╝     ╚═╝ ╚═╝ ╚═╝  ╚═╝ ╚═╝`

// Welcome is the first screen: logo, tagline, version, and the key hint.
type Welcome struct {
	Theme   *styles.Theme
	Version string

	width  int
	height int
}

// NewWelcome creates the welcome panel.
func NewWelcome(theme *styles.Theme, version string) *Welcome {
	return &Welcome{Theme: theme, Version: version}
}

// SetSize updates the panel dimensions.
func (w *Welcome) SetSize(width, height int) {
	w.width = width
	w.height = height
}

// View renders the welcome screen centered in the terminal.
func (w *Welcome) View() string {
	body := lipgloss.JoinVertical(lipgloss.Center,
		w.Theme.LogoStyle.Render(logo),
		"",
		w.Theme.HeaderSubtitle.Render("Unleash the power of AI, one chat at a time"),
		"",
		w.Theme.HelpText.Render("v"+w.Version),
		"",
		w.Theme.HelpText.Render("press any key to start"),
	)
	if w.width == 0 {
		return body
	}
	return lipgloss.Place(w.width, w.height, lipgloss.Center, lipgloss.Center, body)
}
