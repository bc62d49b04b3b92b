// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package panels

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mikilabs/miki-tui/internal/ui/styles"
)

// =============================================================================
// LOGIN PANEL
// =============================================================================

// LoginSubmitMsg carries the credentials the user entered.
type LoginSubmitMsg struct {
	Email    string
	Password string
}

// Login is the sign-in form: email, password, submit.
type Login struct {
	Theme *styles.Theme

	email    textinput.Model
	password textinput.Model
	focus    int
	errMsg   string
	busy     bool
	width    int
	height   int
}

// NewLogin creates the login panel.
func NewLogin(theme *styles.Theme) *Login {
	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.Prompt = "  "
	email.CharLimit = 254
	email.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.Prompt = "  "
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '*'
	password.CharLimit = 128

	return &Login{Theme: theme, email: email, password: password}
}

// SetSize updates the panel dimensions.
func (l *Login) SetSize(width, height int) {
	l.width = width
	l.height = height
	l.email.Width = 40
	l.password.Width = 40
}

// SetError displays a failure under the form and re-enables submission.
func (l *Login) SetError(msg string) {
	l.errMsg = msg
	l.busy = false
}

// Reset clears the form.
func (l *Login) Reset() {
	l.email.Reset()
	l.password.Reset()
	l.errMsg = ""
	l.busy = false
	l.focus = 0
	l.email.Focus()
	l.password.Blur()
}

// Update handles field navigation and submission.
func (l *Login) Update(msg tea.KeyMsg) (*Login, tea.Cmd) {
	if l.busy {
		return l, nil
	}

	switch msg.String() {
	case "tab", "down":
		l.setFocus(l.focus + 1)
		return l, nil
	case "shift+tab", "up":
		l.setFocus(l.focus - 1)
		return l, nil
	case "enter":
		if l.focus == 0 {
			l.setFocus(1)
			return l, nil
		}
		return l, l.submit()
	}

	var cmd tea.Cmd
	if l.focus == 0 {
		l.email, cmd = l.email.Update(msg)
	} else {
		l.password, cmd = l.password.Update(msg)
	}
	return l, cmd
}

func (l *Login) setFocus(focus int) {
	if focus < 0 {
		focus = 1
	}
	if focus > 1 {
		focus = 0
	}
	l.focus = focus
	if focus == 0 {
		l.email.Focus()
		l.password.Blur()
	} else {
		l.email.Blur()
		l.password.Focus()
	}
}

func (l *Login) submit() tea.Cmd {
	email := strings.TrimSpace(l.email.Value())
	password := l.password.Value()

	if email == "" || !strings.Contains(email, "@") {
		l.errMsg = "Enter a valid email address."
		return nil
	}
	if password == "" {
		l.errMsg = "Enter your password."
		return nil
	}

	l.errMsg = ""
	l.busy = true
	return func() tea.Msg {
		return LoginSubmitMsg{Email: email, Password: password}
	}
}

// View renders the login form.
func (l *Login) View() string {
	lines := []string{
		l.Theme.HeaderSubtitle.Render("Sign in"),
		"",
		l.Theme.FormLabel.Render("Email"),
		l.email.View(),
		"",
		l.Theme.FormLabel.Render("Password"),
		l.password.View(),
		"",
	}
	if l.errMsg != "" {
		lines = append(lines, l.Theme.FormError.Render(l.errMsg), "")
	}
	if l.busy {
		lines = append(lines, l.Theme.FormHint.Render("Signing in..."))
	} else {
		lines = append(lines, l.Theme.FormHint.Render("enter sign in  |  tab next field"))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
