// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/mikilabs/miki-tui/internal/ui/styles"
)

// =============================================================================
// APP HEADER
// =============================================================================

// Header renders the top bar: brand, an optional subtitle, and the panel
// tabs with the active one highlighted.
type Header struct {
	Theme    *styles.Theme
	Width    int
	Subtitle string
	Tabs     []string
	Active   int
}

// View renders the header.
func (h Header) View() string {
	brand := h.Theme.HeaderTitle.Render("Miki")
	if h.Subtitle != "" {
		brand += " " + h.Theme.HeaderSubtitle.Render(h.Subtitle)
	}

	var tabs string
	for i, tab := range h.Tabs {
		if i == h.Active {
			tabs += h.Theme.TabActive.Render(tab)
		} else {
			tabs += h.Theme.Tab.Render(tab)
		}
	}

	if tabs == "" {
		return brand
	}
	gap := h.Width - lipgloss.Width(brand) - lipgloss.Width(tabs)
	if gap < 1 {
		gap = 1
	}
	return brand + lipgloss.NewStyle().Width(gap).Render("") + tabs
}
