// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mikilabs/miki-tui/internal/model"
	"github.com/mikilabs/miki-tui/internal/session"
)

// =============================================================================
// RENDERING
// =============================================================================

// View renders the chat panel: transcript viewport, notice line, input box.
func (m *Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	var sb strings.Builder
	sb.WriteString(m.viewport.View())
	sb.WriteString("\n")

	if m.notice != "" {
		sb.WriteString(m.notice)
	}
	sb.WriteString("\n")
	sb.WriteString(m.inputView())
	return sb.String()
}

func (m *Model) inputView() string {
	if m.state == session.StateGenerating {
		return m.theme.InputContainer.Width(m.width - 2).Render(
			m.theme.InputDisabled.Render(m.spinner.View() + " Waiting for reply..."))
	}
	return m.theme.InputContainer.Width(m.width - 2).Render(m.input.View())
}

// refresh rebuilds the viewport content from the transcript and reveal state.
func (m *Model) refresh() {
	if !m.ready {
		return
	}

	var blocks []string
	for _, msg := range m.ctrl.Transcript().All() {
		blocks = append(blocks, m.renderMessage(msg))
	}
	if m.partial != "" {
		blocks = append(blocks, m.renderPartial())
	}
	if m.feedbackOpen && m.partial == "" {
		blocks = append(blocks, m.theme.FeedbackBar.Render("Was this response helpful?  y / n"))
	}
	m.viewport.SetContent(strings.Join(blocks, "\n\n"))
}

func (m *Model) renderMessage(msg *model.Message) string {
	meta := msg.Sender.DisplayName()
	if m.showTimestamps {
		meta += " " + msg.DisplayTime()
	}

	if msg.IsUser() {
		bubble := m.theme.UserBubble.MaxWidth(m.bubbleWidth()).Render(msg.Text)
		return lipgloss.JoinVertical(lipgloss.Right,
			bubble,
			m.theme.BubbleMeta.Render(meta),
		)
	}

	text := msg.Text
	if m.renderer != nil {
		if out, err := m.renderer.Render(text); err == nil {
			text = strings.TrimRight(out, "\n")
		}
	}
	bubble := m.theme.AssistantBubble.MaxWidth(m.bubbleWidth()).Render(text)
	return lipgloss.JoinVertical(lipgloss.Left,
		bubble,
		m.theme.BubbleMeta.Render(meta),
	)
}

// renderPartial draws the in-progress reveal. Markdown is deliberately not
// applied here; an unterminated code fence would garble every frame until
// the closing backticks arrive.
func (m *Model) renderPartial() string {
	return m.theme.PartialBubble.MaxWidth(m.bubbleWidth()).Render(m.partial + " " + m.spinner.View())
}

func (m *Model) bubbleWidth() int {
	w := m.width - 8
	if w < 20 {
		w = 20
	}
	return w
}
