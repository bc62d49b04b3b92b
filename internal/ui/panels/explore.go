// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package panels

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mikilabs/miki-tui/internal/ui/styles"
)

// =============================================================================
// EXPLORE PANEL
// =============================================================================

// UseCaseChosenMsg is emitted when the user picks a starter prompt.
// The prompt lands in the chat compose buffer; it is never auto-sent.
type UseCaseChosenMsg struct {
	Prompt string
}

// useCase is one starter card on the explore panel.
type useCase struct {
	category string
	title    string
	prompt   string
}

// builtinUseCases mirrors the starter ideas the web client surfaces.
var builtinUseCases = []useCase{
	{"writing", "blog outline", "Outline a blog post about staying productive while working remotely."},
	{"writing", "polish a draft", "Rewrite this paragraph so it reads clearly and confidently: "},
	{"marketing", "product tagline", "Write five catchy taglines for a new eco-friendly water bottle."},
	{"marketing", "launch email", "Draft a short product launch email announcing our new mobile app."},
	{"selling", "product description", "Write a persuasive product description for a handmade leather wallet."},
	{"storytelling", "story starter", "Start a short story about a lighthouse keeper who finds a message in a bottle."},
	{"everyday", "explain simply", "Explain how compound interest works like I'm twelve."},
	{"everyday", "meal ideas", "Suggest three quick weeknight dinners using chicken and rice."},
}

// Explore lists starter prompts grouped by category.
type Explore struct {
	Theme *styles.Theme

	cases  []useCase
	cursor int
	width  int
	height int
	titler cases.Caser
}

// NewExplore creates the explore panel.
func NewExplore(theme *styles.Theme) *Explore {
	return &Explore{
		Theme:  theme,
		cases:  builtinUseCases,
		titler: cases.Title(language.English),
	}
}

// SetSize updates the panel dimensions.
func (e *Explore) SetSize(width, height int) {
	e.width = width
	e.height = height
}

// Update handles navigation and selection keys.
func (e *Explore) Update(msg tea.KeyMsg) (*Explore, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if e.cursor > 0 {
			e.cursor--
		}
	case "down", "j":
		if e.cursor < len(e.cases)-1 {
			e.cursor++
		}
	case "enter":
		prompt := e.cases[e.cursor].prompt
		return e, func() tea.Msg { return UseCaseChosenMsg{Prompt: prompt} }
	}
	return e, nil
}

// View renders the grouped starter prompts.
func (e *Explore) View() string {
	var lines []string
	lines = append(lines, e.Theme.HeaderSubtitle.Render("Explore what Miki can do"), "")

	lastCategory := ""
	for i, uc := range e.cases {
		if uc.category != lastCategory {
			lines = append(lines, e.Theme.CardTitle.Render(e.titler.String(uc.category)))
			lastCategory = uc.category
		}
		item := e.Theme.ListItem
		if i == e.cursor {
			item = e.Theme.ListSelected
		}
		lines = append(lines, item.Render(e.titler.String(uc.title))+
			"  "+e.Theme.ListMeta.Render(truncatePrompt(uc.prompt, e.width-30)))
	}

	lines = append(lines, "", e.Theme.HelpText.Render("enter use prompt  |  up/down move"))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func truncatePrompt(s string, max int) string {
	if max < 20 {
		max = 20
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
