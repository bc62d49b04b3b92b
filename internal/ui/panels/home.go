// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package panels

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mikilabs/miki-tui/internal/model"
	"github.com/mikilabs/miki-tui/internal/ui/styles"
	"github.com/mikilabs/miki-tui/internal/util"
)

// =============================================================================
// HOME PANEL
// =============================================================================

// PersonaChosenMsg is emitted when the user picks a card on the home panel.
// A zero Persona means the plain assistant.
type PersonaChosenMsg struct {
	Persona model.Persona
}

// Home shows the persona cards: plain Miki first, then the built-ins.
type Home struct {
	Theme *styles.Theme

	personas []model.Persona
	cursor   int
	width    int
	height   int
}

// NewHome creates the home panel with the built-in persona set.
func NewHome(theme *styles.Theme) *Home {
	personas := append([]model.Persona{{}}, model.BuiltinPersonas()...)
	return &Home{Theme: theme, personas: personas}
}

// SetSize updates the panel dimensions.
func (h *Home) SetSize(width, height int) {
	h.width = width
	h.height = height
}

// Selected returns the persona under the cursor.
func (h *Home) Selected() model.Persona {
	return h.personas[h.cursor]
}

// Update handles navigation and selection keys.
func (h *Home) Update(msg tea.KeyMsg) (*Home, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if h.cursor > 0 {
			h.cursor--
		}
	case "down", "j":
		if h.cursor < len(h.personas)-1 {
			h.cursor++
		}
	case "enter":
		chosen := h.personas[h.cursor]
		return h, func() tea.Msg { return PersonaChosenMsg{Persona: chosen} }
	}
	return h, nil
}

// View renders the persona cards.
func (h *Home) View() string {
	var cards []string
	cards = append(cards, h.Theme.HeaderSubtitle.Render("Who do you want to chat with?"), "")

	for i, p := range h.personas {
		title := p.Name
		body := "General-purpose assistant for anything on your mind."
		if p.IsZero() {
			title = model.DefaultAssistantName
		} else {
			body = util.TruncateRunes(p.PromptPrefix, 70)
		}

		card := h.Theme.Card
		titleStyle := h.Theme.CardTitle
		if i == h.cursor {
			card = h.Theme.CardSelected
		}
		cards = append(cards, card.Width(h.cardWidth()).Render(
			titleStyle.Render(title)+"\n"+h.Theme.CardBody.Render(body)))
	}

	cards = append(cards, "", h.Theme.HelpText.Render("enter choose  |  up/down move"))
	return lipgloss.JoinVertical(lipgloss.Left, cards...)
}

func (h *Home) cardWidth() int {
	w := h.width - 6
	if w < 30 {
		w = 30
	}
	if w > 76 {
		w = 76
	}
	return w
}
