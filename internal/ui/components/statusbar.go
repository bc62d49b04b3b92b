// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mikilabs/miki-tui/internal/session"
	"github.com/mikilabs/miki-tui/internal/ui/styles"
)

// =============================================================================
// STATUS BAR
// =============================================================================

// Shortcut is one key hint in the status bar.
type Shortcut struct {
	Key  string
	Desc string
}

// StatusBar renders the bottom bar: session state on the left, key hints on
// the right.
type StatusBar struct {
	Theme     *styles.Theme
	Width     int
	State     session.State
	Shortcuts []Shortcut
}

// View renders the status bar.
func (s StatusBar) View() string {
	state := s.stateView()

	var hints []string
	for _, sc := range s.Shortcuts {
		hints = append(hints, s.Theme.ShortcutKey.Render(sc.Key)+" "+s.Theme.ShortcutDesc.Render(sc.Desc))
	}
	right := strings.Join(hints, "  ")

	gap := s.Width - lipgloss.Width(state) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	line := state + strings.Repeat(" ", gap) + right
	return s.Theme.StatusBar.Width(s.Width).Render(line)
}

func (s StatusBar) stateView() string {
	switch s.State {
	case session.StateReady:
		return s.Theme.StatusReady.Render("* ready")
	case session.StateGenerating:
		return s.Theme.StatusBusy.Render("* generating")
	case session.StateConnecting:
		return s.Theme.StatusBusy.Render("* connecting")
	case session.StateErrored:
		return s.Theme.StatusError.Render("* disconnected")
	case session.StateClosed:
		return s.Theme.StatusError.Render("* closed")
	default:
		return s.Theme.ShortcutDesc.Render("* idle")
	}
}
