// miki - a terminal client for the Miki chatbot.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mikilabs/miki-tui/internal/cli"
	"github.com/mikilabs/miki-tui/internal/config"
	"github.com/mikilabs/miki-tui/internal/identity"
	"github.com/mikilabs/miki-tui/internal/model"
	"github.com/mikilabs/miki-tui/internal/session"
	"github.com/mikilabs/miki-tui/internal/storage"
	"github.com/mikilabs/miki-tui/internal/ui/chat"
	"github.com/mikilabs/miki-tui/internal/ui/components"
	"github.com/mikilabs/miki-tui/internal/ui/panels"
	"github.com/mikilabs/miki-tui/internal/ui/styles"
	"github.com/mikilabs/miki-tui/internal/voice"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdChat:
		cli.HandleChat(args)
	case cli.CmdLogin:
		cli.HandleLogin(args)
	case cli.CmdLogout:
		cli.HandleLogout(args)
	case cli.CmdStatus:
		cli.HandleStatus(args)
	case cli.CmdVersion:
		cli.HandleVersion(args)
	case cli.CmdHelp:
		cli.HandleHelp()
	default:
		runTUI(args)
	}
}

// runTUI starts the full-screen interface.
func runTUI(args cli.Args) {
	cfg := config.Global()
	if args.Endpoint != "" {
		cfg = cfg.Clone()
		cfg.Server.ChatURL = args.Endpoint
	}

	persona, err := cli.ResolvePersona(args.Persona)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	theme := styles.NewTheme()
	m := NewApp(theme, cfg)
	if !persona.IsZero() {
		m.pendingPersona = &persona
	}

	p := tea.NewProgram(m, tea.WithAltScreen())

	// Hot reload: config edits land in the running UI.
	if path, err := config.ConfigPath(); err == nil {
		if watcher, err := config.NewWatcher(path, func(next *config.Config) {
			p.Send(ConfigReloadedMsg{Config: next})
		}); err == nil {
			watcher.Watch()
			defer watcher.Close()
		}
	}

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running miki: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// PANEL ROUTING
// =============================================================================

// Panel identifies the active screen.
type Panel int

const (
	PanelWelcome Panel = iota
	PanelHome
	PanelChat
	PanelVoice
	PanelExplore
	PanelLibrary
	PanelProfile
	PanelLogin
	PanelSignup
	PanelAbout
)

// tabPanels are the screens reachable by cycling with tab.
var tabPanels = []Panel{PanelHome, PanelChat, PanelVoice, PanelExplore, PanelLibrary, PanelProfile}

var tabLabels = []string{" Home ", " Chat ", " Voice ", " Explore ", " Library ", " Profile "}

// =============================================================================
// APP MESSAGES
// =============================================================================

// SessionOpenedMsg reports the outcome of the chat channel dial.
type SessionOpenedMsg struct {
	Err error
}

// LoginResultMsg reports a sign-in attempt.
type LoginResultMsg struct {
	Session *identity.Session
	Err     error
}

// SignupResultMsg reports an account creation attempt.
type SignupResultMsg struct {
	Session *identity.Session
	Err     error
}

// SignedOutMsg reports sign-out completion.
type SignedOutMsg struct{}

// LibraryLoadedMsg delivers the saved conversation listing.
type LibraryLoadedMsg struct {
	Metas []storage.ConversationMeta
	Err   error
}

// ConversationSavedMsg reports a library save.
type ConversationSavedMsg struct {
	ID  string
	Err error
}

// ConfigReloadedMsg delivers a hot-reloaded configuration.
type ConfigReloadedMsg struct {
	Config *config.Config
}

// VoiceStartedMsg reports the outcome of opening the voice channel.
type VoiceStartedMsg struct {
	Err error
}

// =============================================================================
// APPLICATION MODEL
// =============================================================================

// App is the root Bubble Tea model: it owns the panels and routes messages
// between them, the session controller, storage, and identity.
type App struct {
	theme *styles.Theme
	cfg   *config.Config

	panel  Panel
	width  int
	height int

	// Chat session. Rebuilt whenever a persona is chosen.
	chatPanel      *chat.Model
	ctrl           *session.Controller
	events         *chat.Events
	pendingPersona *model.Persona

	// Voice session, live only while recording.
	voiceSession *voice.Session
	voiceCh      chan tea.Msg

	// Panels.
	welcome *panels.Welcome
	home    *panels.Home
	explore *panels.Explore
	library *panels.Library
	profile *panels.Profile
	login   *panels.Login
	signup  *panels.Signup
	about   *panels.About
	voice   *panels.Voice

	auth   *identity.Client
	notice string
}

// NewApp creates the root model.
func NewApp(theme *styles.Theme, cfg *config.Config) *App {
	auth := identity.NewClient(identity.ClientConfig{
		BaseURL: cfg.Server.AuthURL,
		AnonKey: cfg.Server.AnonKey,
	})

	app := &App{
		theme:   theme,
		cfg:     cfg,
		panel:   PanelWelcome,
		welcome: panels.NewWelcome(theme, Version),
		home:    panels.NewHome(theme),
		explore: panels.NewExplore(theme),
		library: panels.NewLibrary(theme),
		profile: panels.NewProfile(theme),
		login:   panels.NewLogin(theme),
		signup:  panels.NewSignup(theme),
		about:   panels.NewAbout(theme, Version),
		voice:   panels.NewVoice(theme),
		auth:    auth,
		voiceCh: make(chan tea.Msg, 64),
	}
	if sess := auth.Session(); sess != nil {
		app.profile.SetUser(&sess.User)
	}
	return app
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return nil
}

// =============================================================================
// UPDATE
// =============================================================================

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.resize(msg.Width, msg.Height)
		if a.chatPanel != nil {
			_, cmd := a.chatPanel.Update(a.contentSize())
			return a, cmd
		}
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case panels.PersonaChosenMsg:
		return a, a.startChat(msg.Persona, "")

	case panels.UseCaseChosenMsg:
		if a.chatPanel == nil {
			return a, a.startChat(model.Persona{}, msg.Prompt)
		}
		a.chatPanel.SetCompose(msg.Prompt)
		a.panel = PanelChat
		return a, nil

	case SessionOpenedMsg:
		if msg.Err != nil {
			a.notice = styles.RenderError("Could not connect: " + msg.Err.Error())
			a.panel = PanelHome
			return a, nil
		}
		a.panel = PanelChat
		return a, nil

	case panels.LoginSubmitMsg:
		return a, a.signIn(msg.Email, msg.Password)

	case panels.SignupSubmitMsg:
		return a, a.signUp(msg.Email, msg.Password)

	case LoginResultMsg:
		if msg.Err != nil {
			if identity.IsInvalidCredentials(msg.Err) {
				a.login.SetError("Invalid email or password.")
			} else {
				a.login.SetError(msg.Err.Error())
			}
			return a, nil
		}
		a.profile.SetUser(&msg.Session.User)
		a.login.Reset()
		a.panel = PanelProfile
		return a, nil

	case SignupResultMsg:
		if msg.Err != nil {
			a.signup.SetError(msg.Err.Error())
			return a, nil
		}
		if msg.Session != nil {
			a.profile.SetUser(&msg.Session.User)
			a.panel = PanelProfile
		} else {
			// Provider wants email confirmation before issuing a session.
			a.notice = styles.RenderInfo("Check your email to confirm the account.")
			a.panel = PanelLogin
		}
		return a, nil

	case panels.SignOutMsg:
		return a, a.signOut()

	case SignedOutMsg:
		a.profile.SetUser(nil)
		a.panel = PanelHome
		return a, nil

	case panels.OpenConversationMsg:
		return a, a.openConversation(msg.ID)

	case panels.DeleteConversationMsg:
		return a, a.deleteConversation(msg.ID)

	case LibraryLoadedMsg:
		if msg.Err != nil {
			a.notice = styles.RenderError("Library unavailable: " + msg.Err.Error())
			return a, nil
		}
		a.library.SetConversations(msg.Metas)
		return a, nil

	case ConversationSavedMsg:
		if msg.Err != nil {
			a.notice = styles.RenderError("Save failed: " + msg.Err.Error())
		} else {
			a.notice = styles.RenderSuccess("Conversation saved.")
		}
		return a, nil

	case ConfigReloadedMsg:
		a.cfg = msg.Config
		return a, nil

	case panels.VoiceToggleMsg:
		return a, a.toggleVoice()

	case VoiceStartedMsg:
		if msg.Err != nil {
			a.voice.SetRecording(false)
			a.voice.SetNotice("Voice unavailable: " + msg.Err.Error())
			return a, nil
		}
		a.voice.SetRecording(true)
		return a, a.waitVoice()

	case panels.VoiceLevelMsg:
		a.voice.PushLevel(msg.Level)
		return a, a.waitVoice()

	case panels.VoiceTranscriptMsg:
		a.voice.SetTranscript(msg.Text)
		if a.chatPanel != nil {
			a.chatPanel.SetCompose(msg.Text)
		}
		return a, a.waitVoice()

	case panels.VoiceErrorMsg:
		a.voice.SetNotice(msg.Err.Error())
		a.voice.SetRecording(false)
		return a, a.waitVoice()
	}

	// Session events and everything else flow to the chat panel.
	if a.chatPanel != nil {
		_, cmd := a.chatPanel.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global keys first.
	switch msg.String() {
	case "ctrl+c":
		a.teardown()
		return a, tea.Quit
	case "tab":
		if a.panel != PanelWelcome && a.panel != PanelLogin && a.panel != PanelSignup {
			a.cycleTab(1)
			return a, a.enterPanel()
		}
	case "shift+tab":
		if a.panel != PanelWelcome && a.panel != PanelLogin && a.panel != PanelSignup {
			a.cycleTab(-1)
			return a, a.enterPanel()
		}
	}

	switch a.panel {
	case PanelWelcome:
		if msg.String() == "q" || msg.String() == "esc" {
			a.teardown()
			return a, tea.Quit
		}
		if a.pendingPersona != nil {
			persona := *a.pendingPersona
			a.pendingPersona = nil
			return a, a.startChat(persona, "")
		}
		a.panel = PanelHome
		return a, nil

	case PanelHome:
		switch msg.String() {
		case "q", "esc":
			a.teardown()
			return a, tea.Quit
		case "l":
			a.panel = PanelLogin
			return a, nil
		case "s":
			a.panel = PanelSignup
			return a, nil
		case "a":
			a.panel = PanelAbout
			return a, nil
		}
		_, cmd := a.home.Update(msg)
		return a, cmd

	case PanelChat:
		if msg.String() == "esc" {
			a.panel = PanelHome
			return a, nil
		}
		if a.chatPanel == nil {
			a.panel = PanelHome
			return a, nil
		}
		_, cmd := a.chatPanel.Update(msg)
		return a, cmd

	case PanelVoice:
		if msg.String() == "esc" {
			a.panel = PanelHome
			return a, nil
		}
		_, cmd := a.voice.Update(msg)
		return a, cmd

	case PanelExplore:
		if msg.String() == "esc" {
			a.panel = PanelHome
			return a, nil
		}
		_, cmd := a.explore.Update(msg)
		return a, cmd

	case PanelLibrary:
		if msg.Type == tea.KeyEsc {
			a.panel = PanelHome
			return a, nil
		}
		_, cmd := a.library.Update(msg)
		return a, cmd

	case PanelProfile:
		switch msg.String() {
		case "esc":
			a.panel = PanelHome
			return a, nil
		case "l":
			if a.auth.Session() == nil {
				a.panel = PanelLogin
				return a, nil
			}
		}
		_, cmd := a.profile.Update(msg)
		return a, cmd

	case PanelLogin:
		if msg.Type == tea.KeyEsc {
			a.panel = PanelHome
			return a, nil
		}
		_, cmd := a.login.Update(msg)
		return a, cmd

	case PanelSignup:
		if msg.Type == tea.KeyEsc {
			a.panel = PanelHome
			return a, nil
		}
		_, cmd := a.signup.Update(msg)
		return a, cmd

	case PanelAbout:
		a.panel = PanelHome
		return a, nil
	}

	return a, nil
}

func (a *App) cycleTab(dir int) {
	current := 0
	for i, p := range tabPanels {
		if p == a.panel {
			current = i
			break
		}
	}
	next := (current + dir + len(tabPanels)) % len(tabPanels)
	a.panel = tabPanels[next]
}

// enterPanel runs the side effects of landing on a panel via tab.
func (a *App) enterPanel() tea.Cmd {
	switch a.panel {
	case PanelLibrary:
		a.library.Focus()
		return a.loadLibrary()
	case PanelChat:
		if a.chatPanel == nil {
			// No session yet; fall back to picking a persona.
			a.panel = PanelHome
		}
	}
	return nil
}

// =============================================================================
// CHAT SESSION WIRING
// =============================================================================

// startChat builds a fresh controller for the chosen persona and dials the
// chat channel off the UI loop. An existing session is torn down first;
// cancel-and-replace, never two live sessions.
func (a *App) startChat(persona model.Persona, compose string) tea.Cmd {
	if a.ctrl != nil {
		a.ctrl.Teardown()
	}

	a.events = chat.NewEvents()
	a.ctrl = session.New(session.Config{
		Endpoint:       a.cfg.Server.ChatURL,
		Persona:        persona,
		RevealInterval: a.cfg.Chat.RevealInterval(),
		SeedGreeting:   a.cfg.Chat.GreetOnOpen,
		SendBurst:      a.cfg.Chat.SendBurst,
		Handlers:       a.events.Handlers(),
	})
	a.chatPanel = chat.New(chat.Config{
		Theme:          a.theme,
		Controller:     a.ctrl,
		Events:         a.events,
		Markdown:       a.cfg.UI.Markdown,
		ShowTimestamps: a.cfg.UI.ShowTimestamps,
	})
	if compose != "" {
		a.chatPanel.SetCompose(compose)
	}

	ctrl := a.ctrl
	dial := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return SessionOpenedMsg{Err: ctrl.OpenSession(ctx)}
	}

	var cmds []tea.Cmd
	cmds = append(cmds, a.chatPanel.Init(), dial)
	if a.width > 0 {
		_, cmd := a.chatPanel.Update(a.contentSize())
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

func (a *App) teardown() {
	if a.ctrl != nil {
		a.ctrl.Teardown()
	}
	if a.voiceSession != nil {
		a.voiceSession.Teardown()
	}
}

// =============================================================================
// IDENTITY WIRING
// =============================================================================

func (a *App) signIn(email, password string) tea.Cmd {
	auth := a.auth
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		sess, err := auth.SignIn(ctx, email, password)
		return LoginResultMsg{Session: sess, Err: err}
	}
}

func (a *App) signUp(email, password string) tea.Cmd {
	auth := a.auth
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		sess, err := auth.SignUp(ctx, email, password)
		return SignupResultMsg{Session: sess, Err: err}
	}
}

func (a *App) signOut() tea.Cmd {
	auth := a.auth
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		auth.SignOut(ctx)
		return SignedOutMsg{}
	}
}

// =============================================================================
// LIBRARY WIRING
// =============================================================================

func (a *App) loadLibrary() tea.Cmd {
	return func() tea.Msg {
		lib, err := storage.OpenDefault()
		if err != nil {
			return LibraryLoadedMsg{Err: err}
		}
		defer lib.Close()
		metas, err := lib.List()
		return LibraryLoadedMsg{Metas: metas, Err: err}
	}
}

// openConversation restores a saved transcript into a fresh chat session.
func (a *App) openConversation(id string) tea.Cmd {
	lib, err := storage.OpenDefault()
	if err != nil {
		a.notice = styles.RenderError("Library unavailable: " + err.Error())
		return nil
	}
	defer lib.Close()

	conv, err := lib.Get(id)
	if err != nil {
		a.notice = styles.RenderError("Could not open conversation: " + err.Error())
		return nil
	}

	persona, _ := cli.ResolvePersona(conv.Persona)
	cmd := a.startChat(persona, "")
	for _, msg := range conv.Messages {
		a.ctrl.Transcript().Append(msg)
	}
	a.panel = PanelChat
	return cmd
}

func (a *App) deleteConversation(id string) tea.Cmd {
	return func() tea.Msg {
		lib, err := storage.OpenDefault()
		if err != nil {
			return LibraryLoadedMsg{Err: err}
		}
		defer lib.Close()
		if err := lib.Delete(id); err != nil {
			return LibraryLoadedMsg{Err: err}
		}
		metas, err := lib.List()
		return LibraryLoadedMsg{Metas: metas, Err: err}
	}
}

// SaveCurrentConversation persists the live transcript to the library.
func (a *App) SaveCurrentConversation() tea.Cmd {
	if a.ctrl == nil {
		return nil
	}
	persona := a.ctrl.Persona().Name
	messages := a.ctrl.Transcript().All()
	return func() tea.Msg {
		lib, err := storage.OpenDefault()
		if err != nil {
			return ConversationSavedMsg{Err: err}
		}
		defer lib.Close()
		id, err := lib.Save(&storage.Conversation{Persona: persona, Messages: messages})
		return ConversationSavedMsg{ID: id, Err: err}
	}
}

// =============================================================================
// VOICE WIRING
// =============================================================================

// toggleVoice starts or stops a recording. Audio comes from the PCM stream
// named by MIKI_VOICE_SOURCE (a file or FIFO); without one the panel shows a
// single notice and text chat is unaffected.
func (a *App) toggleVoice() tea.Cmd {
	if a.voiceSession != nil && a.voiceSession.Recording() {
		sess := a.voiceSession
		return func() tea.Msg {
			sess.Stop()
			return nil
		}
	}

	sourcePath := os.Getenv("MIKI_VOICE_SOURCE")
	if sourcePath == "" {
		a.voice.SetNotice("No audio source configured. Set MIKI_VOICE_SOURCE to a PCM stream.")
		return nil
	}
	source, err := os.Open(sourcePath)
	if err != nil {
		a.voice.SetNotice("Could not open audio source: " + err.Error())
		return nil
	}

	a.voiceSession = voice.NewSession(voice.Config{
		Endpoint: a.cfg.Server.VoiceURL,
		Source:   source,
		Handlers: voice.Handlers{
			OnLevel: func(level float64) {
				select {
				case a.voiceCh <- panels.VoiceLevelMsg{Level: level}:
				default:
				}
			},
			OnTranscript: func(text string) {
				a.voiceCh <- panels.VoiceTranscriptMsg{Text: text}
			},
			OnError: func(err error) {
				a.voiceCh <- panels.VoiceErrorMsg{Err: err}
			},
		},
	})

	sess := a.voiceSession
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		err := sess.Start(ctx)
		if err != nil {
			source.Close()
		}
		return VoiceStartedMsg{Err: err}
	}
}

func (a *App) waitVoice() tea.Cmd {
	ch := a.voiceCh
	return func() tea.Msg {
		return <-ch
	}
}

// =============================================================================
// VIEW
// =============================================================================

func (a *App) resize(width, height int) {
	a.width = width
	a.height = height
	a.welcome.SetSize(width, height)
	contentHeight := height - 3
	a.home.SetSize(width, contentHeight)
	a.explore.SetSize(width, contentHeight)
	a.library.SetSize(width, contentHeight)
	a.profile.SetSize(width, contentHeight)
	a.login.SetSize(width, contentHeight)
	a.signup.SetSize(width, contentHeight)
	a.about.SetSize(width, contentHeight)
	a.voice.SetSize(width, contentHeight)
}

// contentSize is the window size handed to the chat panel, shrunk for the
// header and status bar.
func (a *App) contentSize() tea.WindowSizeMsg {
	return tea.WindowSizeMsg{Width: a.width, Height: a.height - 3}
}

// View implements tea.Model.
func (a *App) View() string {
	if a.panel == PanelWelcome {
		return a.welcome.View()
	}

	header := components.Header{
		Theme:  a.theme,
		Width:  a.width,
		Tabs:   tabLabels,
		Active: a.activeTab(),
	}

	var content string
	switch a.panel {
	case PanelHome:
		content = a.home.View()
	case PanelChat:
		if a.chatPanel != nil {
			content = a.chatPanel.View()
		}
	case PanelVoice:
		content = a.voice.View()
	case PanelExplore:
		content = a.explore.View()
	case PanelLibrary:
		content = a.library.View()
	case PanelProfile:
		content = a.profile.View()
	case PanelLogin:
		content = a.login.View()
	case PanelSignup:
		content = a.signup.View()
	case PanelAbout:
		content = a.about.View()
	}

	state := session.StateIdle
	if a.ctrl != nil {
		state = a.ctrl.State()
	}
	status := components.StatusBar{
		Theme: a.theme,
		Width: a.width,
		State: state,
		Shortcuts: []components.Shortcut{
			{Key: "tab", Desc: "switch"},
			{Key: "esc", Desc: "home"},
			{Key: "C-c", Desc: "quit"},
		},
	}

	out := header.View() + "\n" + content + "\n" + status.View()
	if a.notice != "" {
		out += "\n" + a.notice
	}
	return out
}

func (a *App) activeTab() int {
	for i, p := range tabPanels {
		if p == a.panel {
			return i
		}
	}
	return 0
}
