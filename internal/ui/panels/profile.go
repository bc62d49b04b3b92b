// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package panels

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mikilabs/miki-tui/internal/identity"
	"github.com/mikilabs/miki-tui/internal/ui/styles"
)

// =============================================================================
// PROFILE PANEL
// =============================================================================

// SignOutMsg is emitted when the user signs out from the profile panel.
type SignOutMsg struct{}

// Profile shows the signed-in account and offers sign-out.
type Profile struct {
	Theme *styles.Theme

	user   *identity.User
	width  int
	height int
}

// NewProfile creates the profile panel.
func NewProfile(theme *styles.Theme) *Profile {
	return &Profile{Theme: theme}
}

// SetSize updates the panel dimensions.
func (p *Profile) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// SetUser sets the signed-in account. Nil means signed out.
func (p *Profile) SetUser(user *identity.User) {
	p.user = user
}

// Update handles the sign-out key.
func (p *Profile) Update(msg tea.KeyMsg) (*Profile, tea.Cmd) {
	if p.user != nil && msg.String() == "ctrl+o" {
		return p, func() tea.Msg { return SignOutMsg{} }
	}
	return p, nil
}

// View renders the account details or a signed-out notice.
func (p *Profile) View() string {
	if p.user == nil {
		return lipgloss.JoinVertical(lipgloss.Left,
			p.Theme.HeaderSubtitle.Render("Profile"),
			"",
			p.Theme.HelpText.Render("You are not signed in."),
			p.Theme.HelpText.Render("Your chats stay on this machine until you sign in."),
		)
	}

	lines := []string{
		p.Theme.HeaderSubtitle.Render("Profile"),
		"",
		p.Theme.FormLabel.Render("Email") + "  " + p.user.Email,
	}
	if !p.user.CreatedAt.IsZero() {
		lines = append(lines, p.Theme.FormLabel.Render("Member since")+"  "+p.user.CreatedAt.Format("January 2006"))
	}
	if name, ok := p.user.Metadata["full_name"].(string); ok && name != "" {
		lines = append(lines, p.Theme.FormLabel.Render("Name")+"  "+name)
	}
	lines = append(lines, "", p.Theme.HelpText.Render("C-o sign out"))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
