// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package panels

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mikilabs/miki-tui/internal/ui/components"
	"github.com/mikilabs/miki-tui/internal/ui/styles"
)

// =============================================================================
// VOICE PANEL
// =============================================================================

// VoiceToggleMsg asks the app to start or stop recording.
type VoiceToggleMsg struct{}

// VoiceLevelMsg carries one amplitude sample while recording.
type VoiceLevelMsg struct {
	Level float64
}

// VoiceTranscriptMsg delivers the final recognized text. The app places it
// in the chat compose buffer; it is never sent automatically.
type VoiceTranscriptMsg struct {
	Text string
}

// VoiceErrorMsg reports a capture or transport failure. One notice; a text
// session is unaffected.
type VoiceErrorMsg struct {
	Err error
}

// Voice shows the recording state, the live waveform, and the last
// transcript.
type Voice struct {
	Theme *styles.Theme

	waveform   *components.Waveform
	recording  bool
	transcript string
	notice     string
	width      int
	height     int
}

// NewVoice creates the voice panel.
func NewVoice(theme *styles.Theme) *Voice {
	return &Voice{Theme: theme, waveform: components.NewWaveform(theme, 48)}
}

// SetSize updates the panel dimensions.
func (v *Voice) SetSize(width, height int) {
	v.width = width
	v.height = height
}

// Recording reports whether the panel believes a capture is running.
func (v *Voice) Recording() bool {
	return v.recording
}

// SetRecording flips the recording indicator and resets the waveform when
// capture stops.
func (v *Voice) SetRecording(on bool) {
	v.recording = on
	if !on {
		v.waveform.Reset()
	}
}

// PushLevel feeds one amplitude sample into the waveform.
func (v *Voice) PushLevel(level float64) {
	v.waveform.Push(level)
}

// SetTranscript records the final recognized text for display.
func (v *Voice) SetTranscript(text string) {
	v.transcript = text
	v.notice = ""
}

// SetNotice shows a one-time capture failure.
func (v *Voice) SetNotice(msg string) {
	v.notice = msg
}

// Update handles the record toggle key.
func (v *Voice) Update(msg tea.KeyMsg) (*Voice, tea.Cmd) {
	if msg.String() == " " || msg.String() == "enter" {
		return v, func() tea.Msg { return VoiceToggleMsg{} }
	}
	return v, nil
}

// View renders the voice screen.
func (v *Voice) View() string {
	status := "Press space to start recording"
	if v.recording {
		status = "Recording... press space to stop"
	}

	lines := []string{
		v.Theme.HeaderSubtitle.Render("Voice chat"),
		"",
		v.waveform.View(),
		"",
		v.Theme.HelpText.Render(status),
	}
	if v.notice != "" {
		lines = append(lines, "", v.Theme.FormError.Render(v.notice))
	}
	if v.transcript != "" {
		lines = append(lines, "",
			v.Theme.FormLabel.Render("Heard:"),
			v.Theme.CardBody.Render(v.transcript),
			v.Theme.HelpText.Render("The text is waiting in the chat composer."))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
