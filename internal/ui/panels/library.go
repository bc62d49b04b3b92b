// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package panels

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mikilabs/miki-tui/internal/storage"
	"github.com/mikilabs/miki-tui/internal/ui/styles"
)

// =============================================================================
// LIBRARY PANEL
// =============================================================================

// OpenConversationMsg is emitted when the user opens a saved conversation.
type OpenConversationMsg struct {
	ID string
}

// DeleteConversationMsg is emitted when the user deletes a saved conversation.
type DeleteConversationMsg struct {
	ID string
}

// Library lists saved conversations with incremental search.
type Library struct {
	Theme *styles.Theme

	all      []storage.ConversationMeta
	filtered []storage.ConversationMeta
	cursor   int
	search   textinput.Model
	width    int
	height   int
}

// NewLibrary creates the library panel.
func NewLibrary(theme *styles.Theme) *Library {
	search := textinput.New()
	search.Placeholder = "Search conversations..."
	search.Prompt = "/ "
	search.CharLimit = 100
	return &Library{Theme: theme, search: search}
}

// SetSize updates the panel dimensions.
func (l *Library) SetSize(width, height int) {
	l.width = width
	l.height = height
	l.search.Width = width - 8
}

// SetConversations replaces the listing, preserving the cursor when possible.
func (l *Library) SetConversations(metas []storage.ConversationMeta) {
	l.all = metas
	l.applyFilter()
}

// Update handles search input, navigation, open, and delete.
func (l *Library) Update(msg tea.KeyMsg) (*Library, tea.Cmd) {
	switch msg.String() {
	case "up", "ctrl+p":
		if l.cursor > 0 {
			l.cursor--
		}
		return l, nil
	case "down", "ctrl+n":
		if l.cursor < len(l.filtered)-1 {
			l.cursor++
		}
		return l, nil
	case "enter":
		if meta, ok := l.selected(); ok {
			return l, func() tea.Msg { return OpenConversationMsg{ID: meta.ID} }
		}
		return l, nil
	case "ctrl+d":
		if meta, ok := l.selected(); ok {
			return l, func() tea.Msg { return DeleteConversationMsg{ID: meta.ID} }
		}
		return l, nil
	}

	var cmd tea.Cmd
	l.search, cmd = l.search.Update(msg)
	l.applyFilter()
	return l, cmd
}

// Focus gives the search box keyboard focus.
func (l *Library) Focus() {
	l.search.Focus()
}

func (l *Library) selected() (storage.ConversationMeta, bool) {
	if l.cursor < 0 || l.cursor >= len(l.filtered) {
		return storage.ConversationMeta{}, false
	}
	return l.filtered[l.cursor], true
}

// applyFilter narrows the listing to titles and previews containing the
// query. The deeper body search lives in storage.Search; this filter only
// covers what is already on screen.
func (l *Library) applyFilter() {
	query := strings.ToLower(strings.TrimSpace(l.search.Value()))
	if query == "" {
		l.filtered = l.all
	} else {
		l.filtered = nil
		for _, meta := range l.all {
			if strings.Contains(strings.ToLower(meta.Title), query) ||
				strings.Contains(strings.ToLower(meta.Preview), query) {
				l.filtered = append(l.filtered, meta)
			}
		}
	}
	if l.cursor >= len(l.filtered) {
		l.cursor = len(l.filtered) - 1
	}
	if l.cursor < 0 {
		l.cursor = 0
	}
}

// View renders the search box and the conversation list.
func (l *Library) View() string {
	var lines []string
	lines = append(lines, l.Theme.HeaderSubtitle.Render("Library"), "")
	lines = append(lines, l.search.View(), "")

	if len(l.filtered) == 0 {
		lines = append(lines, l.Theme.HelpText.Render("No saved conversations yet."))
	}
	for i, meta := range l.filtered {
		item := l.Theme.ListItem
		if i == l.cursor {
			item = l.Theme.ListSelected
		}
		detail := meta.UpdatedAt.Format("Jan 2 15:04")
		if meta.Persona != "" {
			detail += " - " + meta.Persona
		}
		lines = append(lines, item.Render(meta.Title)+"  "+l.Theme.ListMeta.Render(detail))
	}

	lines = append(lines, "", l.Theme.HelpText.Render("enter open  |  C-d delete  |  type to search"))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
