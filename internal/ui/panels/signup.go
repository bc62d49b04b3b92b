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
// SIGNUP PANEL
// =============================================================================

// SignupSubmitMsg carries the credentials for a new account.
type SignupSubmitMsg struct {
	Email    string
	Password string
}

// Signup is the account creation form: email, password, confirmation.
type Signup struct {
	Theme *styles.Theme

	email    textinput.Model
	password textinput.Model
	confirm  textinput.Model
	focus    int
	errMsg   string
	busy     bool
	width    int
	height   int
}

// NewSignup creates the signup panel.
func NewSignup(theme *styles.Theme) *Signup {
	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.Prompt = "  "
	email.CharLimit = 254
	email.Focus()

	password := textinput.New()
	password.Placeholder = "password (8+ characters)"
	password.Prompt = "  "
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '*'
	password.CharLimit = 128

	confirm := textinput.New()
	confirm.Placeholder = "confirm password"
	confirm.Prompt = "  "
	confirm.EchoMode = textinput.EchoPassword
	confirm.EchoCharacter = '*'
	confirm.CharLimit = 128

	return &Signup{Theme: theme, email: email, password: password, confirm: confirm}
}

// SetSize updates the panel dimensions.
func (s *Signup) SetSize(width, height int) {
	s.width = width
	s.height = height
	s.email.Width = 40
	s.password.Width = 40
	s.confirm.Width = 40
}

// SetError displays a failure under the form and re-enables submission.
func (s *Signup) SetError(msg string) {
	s.errMsg = msg
	s.busy = false
}

// Update handles field navigation and submission.
func (s *Signup) Update(msg tea.KeyMsg) (*Signup, tea.Cmd) {
	if s.busy {
		return s, nil
	}

	switch msg.String() {
	case "tab", "down":
		s.setFocus(s.focus + 1)
		return s, nil
	case "shift+tab", "up":
		s.setFocus(s.focus - 1)
		return s, nil
	case "enter":
		if s.focus < 2 {
			s.setFocus(s.focus + 1)
			return s, nil
		}
		return s, s.submit()
	}

	var cmd tea.Cmd
	switch s.focus {
	case 0:
		s.email, cmd = s.email.Update(msg)
	case 1:
		s.password, cmd = s.password.Update(msg)
	default:
		s.confirm, cmd = s.confirm.Update(msg)
	}
	return s, cmd
}

func (s *Signup) setFocus(focus int) {
	if focus < 0 {
		focus = 2
	}
	if focus > 2 {
		focus = 0
	}
	s.focus = focus
	s.email.Blur()
	s.password.Blur()
	s.confirm.Blur()
	switch focus {
	case 0:
		s.email.Focus()
	case 1:
		s.password.Focus()
	default:
		s.confirm.Focus()
	}
}

func (s *Signup) submit() tea.Cmd {
	email := strings.TrimSpace(s.email.Value())
	password := s.password.Value()

	if email == "" || !strings.Contains(email, "@") {
		s.errMsg = "Enter a valid email address."
		return nil
	}
	if len(password) < 8 {
		s.errMsg = "Password must be at least 8 characters."
		return nil
	}
	if password != s.confirm.Value() {
		s.errMsg = "Passwords do not match."
		return nil
	}

	s.errMsg = ""
	s.busy = true
	return func() tea.Msg {
		return SignupSubmitMsg{Email: email, Password: password}
	}
}

// View renders the signup form.
func (s *Signup) View() string {
	lines := []string{
		s.Theme.HeaderSubtitle.Render("Create an account"),
		"",
		s.Theme.FormLabel.Render("Email"),
		s.email.View(),
		"",
		s.Theme.FormLabel.Render("Password"),
		s.password.View(),
		"",
		s.Theme.FormLabel.Render("Confirm password"),
		s.confirm.View(),
		"",
	}
	if s.errMsg != "" {
		lines = append(lines, s.Theme.FormError.Render(s.errMsg), "")
	}
	if s.busy {
		lines = append(lines, s.Theme.FormHint.Render("Creating account..."))
	} else {
		lines = append(lines, s.Theme.FormHint.Render("enter create account  |  tab next field"))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
