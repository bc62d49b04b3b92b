// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/mikilabs/miki-tui/internal/model"
	"github.com/mikilabs/miki-tui/internal/session"
	"github.com/mikilabs/miki-tui/internal/socket"
	"github.com/mikilabs/miki-tui/internal/ui/styles"
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Config configures a chat panel.
type Config struct {
	Theme      *styles.Theme
	Controller *session.Controller
	Events     *Events

	// Markdown renders assistant replies through glamour when set.
	Markdown       bool
	ShowTimestamps bool
}

// Model is the Bubble Tea model for the chat panel.
type Model struct {
	theme  *styles.Theme
	ctrl   *session.Controller
	events *Events
	keys   KeyMap

	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	width  int
	height int
	ready  bool

	state   session.State
	partial string
	notice  string

	// feedbackOpen shows the helpfulness prompt under the latest reply.
	feedbackOpen bool

	markdown       bool
	showTimestamps bool
	renderer       *glamour.TermRenderer
}

// New creates a chat panel bound to an already constructed controller.
// The caller is responsible for opening the session and tearing it down.
func New(cfg Config) *Model {
	input := textinput.New()
	input.Placeholder = "Message " + assistantName(cfg.Controller) + "..."
	input.Prompt = "> "
	input.CharLimit = 4000
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	if cfg.Theme != nil {
		sp.Style = cfg.Theme.Spinner
	}

	return &Model{
		theme:          cfg.Theme,
		ctrl:           cfg.Controller,
		events:         cfg.Events,
		keys:           DefaultKeyMap(),
		input:          input,
		spinner:        sp,
		state:          session.StateIdle,
		markdown:       cfg.Markdown,
		showTimestamps: cfg.ShowTimestamps,
	}
}

func assistantName(ctrl *session.Controller) string {
	if ctrl != nil {
		if p := ctrl.Persona(); p.Name != "" {
			return p.Name
		}
	}
	return model.DefaultAssistantName
}

// Init starts the input cursor and arms the session event pump.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, m.events.WaitForEvent())
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles Bubble Tea messages.
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case SessionStateMsg:
		m.state = msg.State
		if msg.State == session.StateGenerating {
			return m, tea.Batch(m.spinner.Tick, m.events.WaitForEvent())
		}
		m.refresh()
		return m, m.events.WaitForEvent()

	case TranscriptChangedMsg:
		if sender, ok := m.ctrl.Transcript().LastSender(); ok {
			m.feedbackOpen = sender == model.SenderAssistant
		}
		m.refresh()
		m.viewport.GotoBottom()
		return m, m.events.WaitForEvent()

	case PartialMsg:
		m.partial = msg.Text
		m.refresh()
		m.viewport.GotoBottom()
		return m, m.events.WaitForEvent()

	case SendFailedMsg:
		m.notice = styles.RenderError("Message not sent: " + msg.Err.Error())
		return m, m.events.WaitForEvent()

	case SessionErrorMsg:
		m.notice = styles.RenderError(msg.Err.Error())
		m.refresh()
		return m, m.events.WaitForEvent()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.state == session.StateGenerating {
			m.refresh()
			return m, cmd
		}
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (*Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		m.submit()
		return m, nil

	case key.Matches(msg, m.keys.Clear):
		m.notice = ""
		return m, nil

	case key.Matches(msg, m.keys.PageUp), key.Matches(msg, m.keys.PageDown):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	if m.feedbackOpen {
		switch msg.String() {
		case "y", "n":
			m.feedbackOpen = false
			m.notice = styles.RenderSuccess("Thanks for the feedback.")
			m.refresh()
			return m, nil
		}
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// submit sends the input line through the controller. The controller appends
// the user message optimistically before the network send, so the transcript
// callback fires even when the send later fails.
func (m *Model) submit() {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return
	}

	err := m.ctrl.Send(text)
	switch {
	case err == nil:
		m.input.Reset()
		m.notice = ""
		m.feedbackOpen = false
	case errors.Is(err, session.ErrBusy):
		m.notice = styles.RenderWarning("Still generating, hang on.")
	case errors.Is(err, session.ErrRateLimited):
		m.notice = styles.RenderWarning("Sending too fast, give it a second.")
	case socket.IsNotConnected(err):
		m.notice = styles.RenderError("Not connected.")
	default:
		m.notice = styles.RenderError(err.Error())
	}
}

// =============================================================================
// LAYOUT
// =============================================================================

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	// Input box and notice line sit below the viewport.
	vpHeight := height - 4
	if vpHeight < 1 {
		vpHeight = 1
	}
	if !m.ready {
		m.viewport = viewport.New(width, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = width
		m.viewport.Height = vpHeight
	}
	m.input.Width = width - 6

	if m.markdown {
		wrap := width - 12
		if wrap < 20 {
			wrap = 20
		}
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(wrap),
		)
		if err == nil {
			m.renderer = r
		}
	}
	m.refresh()
	m.viewport.GotoBottom()
}

// State returns the panel's view of the session state.
func (m *Model) State() session.State {
	return m.state
}

// SetCompose replaces the input line, used by the explore starters and the
// voice transcript. The text is never auto-sent.
func (m *Model) SetCompose(text string) {
	m.input.SetValue(text)
	m.input.CursorEnd()
}
