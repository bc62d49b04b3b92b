// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/mikilabs/miki-tui/internal/model"
	"github.com/mikilabs/miki-tui/internal/reveal"
	"github.com/mikilabs/miki-tui/internal/socket"
	"github.com/mikilabs/miki-tui/internal/transcript"
)

// =============================================================================
// CONNECTION INTERFACE
// =============================================================================

// Conn is the slice of the session connection the controller needs.
// *socket.Conn satisfies it; tests inject fakes.
type Conn interface {
	Open(ctx context.Context) error
	Send(req socket.ChatRequest) error
	Close() error
}

// ConnFactory builds the connection with the controller's callbacks wired in.
type ConnFactory func(cb socket.Callbacks) Conn

// =============================================================================
// HANDLERS
// =============================================================================

// Handlers receive session events. All fields are optional. Handlers may be
// invoked from socket and reveal goroutines; they must be fast and must not
// call back into the Controller.
type Handlers struct {
	// OnStateChange fires on every state transition.
	OnStateChange func(state State)
	// OnTranscriptChange fires after a message is committed.
	OnTranscriptChange func()
	// OnPartial delivers the growing reveal prefix; an empty string clears it.
	OnPartial func(partial string)
	// OnSendFailed fires when the transport rejected an outbound message.
	// The optimistic user message stays committed; no assistant reply is
	// fabricated.
	OnSendFailed func(err error)
	// OnError fires on transport faults.
	OnError func(err error)
}

// =============================================================================
// CONFIGURATION
// =============================================================================

// Config configures one session controller.
type Config struct {
	// Endpoint is the chat channel URL (ignored when ConnFactory is set).
	Endpoint string

	// Persona conditions the assistant for the whole session. Zero value
	// means the plain assistant.
	Persona model.Persona

	// RevealInterval is the typing-reveal cadence (default 30ms/char).
	RevealInterval time.Duration

	// SeedGreeting appends the persona's greeting as the first transcript
	// entry, the way the chat panel opens a conversation.
	SeedGreeting bool

	// SendEvery and SendBurst tune the send flood guard. Zero values get
	// generous defaults; the UI already disables sending while generating.
	SendEvery time.Duration
	SendBurst int

	Handlers Handlers

	// ConnFactory overrides how the connection is built. Default dials
	// Endpoint over a websocket.
	ConnFactory ConnFactory
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller manages a single conversation: connection lifecycle, message
// ordering, and the incremental reveal of inbound responses. One controller
// instance exclusively owns its connection, transcript, and scheduler.
type Controller struct {
	mu sync.Mutex

	state    State
	persona  model.Persona
	lastErr  error
	handlers Handlers

	conn       Conn
	transcript *transcript.Store
	scheduler  *reveal.Scheduler
	limiter    *rate.Limiter
}

// New creates a session controller in the Idle state.
func New(cfg Config) *Controller {
	c := &Controller{
		state:      StateIdle,
		persona:    cfg.Persona,
		handlers:   cfg.Handlers,
		transcript: transcript.NewStore(),
		scheduler:  reveal.NewScheduler(cfg.RevealInterval),
	}

	every := cfg.SendEvery
	if every <= 0 {
		every = 100 * time.Millisecond
	}
	burst := cfg.SendBurst
	if burst <= 0 {
		burst = 10
	}
	c.limiter = rate.NewLimiter(rate.Every(every), burst)

	factory := cfg.ConnFactory
	if factory == nil {
		endpoint := cfg.Endpoint
		factory = func(cb socket.Callbacks) Conn {
			return socket.NewConn(endpoint, cb)
		}
	}
	c.conn = factory(socket.Callbacks{
		OnOpen:    c.handleConnOpen,
		OnMessage: c.handleInbound,
		OnClose:   c.handleConnClose,
		OnError:   c.handleConnError,
	})

	if cfg.SeedGreeting {
		c.transcript.Append(model.NewAssistantMessage(cfg.Persona.Greeting()))
	}

	return c
}

// =============================================================================
// ACCESSORS
// =============================================================================

// State returns the current session state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Transcript returns the session's message log.
func (c *Controller) Transcript() *transcript.Store {
	return c.transcript
}

// Persona returns the session's conditioning context.
func (c *Controller) Persona() model.Persona {
	return c.persona
}

// LastError returns the fault that moved the session to Errored, if any.
func (c *Controller) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// =============================================================================
// USER-FACING OPERATIONS
// =============================================================================

// OpenSession establishes the channel. Idle -> Connecting; the Ready
// transition arrives asynchronously through the connection's open callback.
func (c *Controller) OpenSession(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return ErrAlreadyStarted
	}
	c.setStateLocked(StateConnecting)
	onState := c.handlers.OnStateChange
	c.mu.Unlock()

	if onState != nil {
		onState(StateConnecting)
	}

	if err := c.conn.Open(ctx); err != nil {
		c.mu.Lock()
		var notify func(State)
		if c.state != StateErrored && c.state != StateClosed {
			c.setStateLocked(StateErrored)
			c.lastErr = err
			notify = c.handlers.OnStateChange
		}
		c.mu.Unlock()
		if notify != nil {
			notify(StateErrored)
		}
		return err
	}
	return nil
}

// Send commits the user's message and forwards it over the channel.
//
// The append is optimistic: it happens before any network effect, so the
// user message stays visible even when the transport send fails. A failed
// send surfaces through OnSendFailed and the returned error; no assistant
// reply is fabricated.
func (c *Controller) Send(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyInput
	}

	c.mu.Lock()
	switch c.state {
	case StateGenerating:
		c.mu.Unlock()
		return ErrBusy
	case StateReady:
		// Proceed.
	default:
		c.mu.Unlock()
		return socket.ErrNotConnected
	}

	if !c.limiter.Allow() {
		c.mu.Unlock()
		return ErrRateLimited
	}

	c.transcript.Append(model.NewUserMessage(text))
	c.setStateLocked(StateGenerating)
	h := c.handlers
	req := socket.ChatRequest{
		Message:       text,
		PersonaPrompt: c.persona.PromptPrefix,
	}
	c.mu.Unlock()

	if h.OnTranscriptChange != nil {
		h.OnTranscriptChange()
	}
	if h.OnStateChange != nil {
		h.OnStateChange(StateGenerating)
	}

	if err := c.conn.Send(req); err != nil {
		// The assistant turn is marked not-generated rather than hanging.
		c.mu.Lock()
		var notify func(State)
		if c.state == StateGenerating {
			c.setStateLocked(StateReady)
			notify = c.handlers.OnStateChange
		}
		c.mu.Unlock()
		if notify != nil {
			notify(StateReady)
		}
		if h.OnSendFailed != nil {
			h.OnSendFailed(err)
		}
		return err
	}
	return nil
}

// Teardown cancels any in-flight reveal, closes the channel, and discards
// transient state. Terminal; safe to call more than once. No handler fires
// after Teardown returns.
func (c *Controller) Teardown() error {
	c.mu.Lock()
	if c.state == StateClosed {
		c.mu.Unlock()
		return nil
	}
	c.setStateLocked(StateClosed)
	onState := c.handlers.OnStateChange
	c.handlers = Handlers{}
	c.mu.Unlock()

	c.scheduler.Cancel()
	err := c.conn.Close()

	if onState != nil {
		onState(StateClosed)
	}
	return err
}

// =============================================================================
// CONNECTION EVENTS
// =============================================================================

func (c *Controller) handleConnOpen() {
	c.mu.Lock()
	if c.state != StateConnecting {
		c.mu.Unlock()
		return
	}
	c.setStateLocked(StateReady)
	onState := c.handlers.OnStateChange
	c.mu.Unlock()

	if onState != nil {
		onState(StateReady)
	}
}

// handleInbound processes one full response from the channel. Responses are
// handled in arrival order; a response arriving while a reveal is active
// cancels and replaces it, so only the newest response reaches the
// transcript.
func (c *Controller) handleInbound(data []byte) {
	text := socket.DecodeResponse(data)

	c.mu.Lock()
	switch c.state {
	case StateReady, StateGenerating:
		// Proceed.
	default:
		c.mu.Unlock()
		return
	}
	stateChanged := c.state != StateGenerating
	c.setStateLocked(StateGenerating)
	onState := c.handlers.OnStateChange
	c.mu.Unlock()

	if stateChanged && onState != nil {
		onState(StateGenerating)
	}

	c.scheduler.Start(text, c.handleRevealTick, c.handleRevealComplete)

	// A teardown may have slipped in between the state check and the start;
	// make sure no reveal outlives the session.
	c.mu.Lock()
	closed := c.state == StateClosed
	c.mu.Unlock()
	if closed {
		c.scheduler.Cancel()
	}
}

func (c *Controller) handleConnError(err error) {
	c.mu.Lock()
	if c.state.Terminal() {
		c.mu.Unlock()
		return
	}
	c.setStateLocked(StateErrored)
	c.lastErr = err
	h := c.handlers
	c.mu.Unlock()

	if h.OnStateChange != nil {
		h.OnStateChange(StateErrored)
	}
	if h.OnError != nil {
		h.OnError(err)
	}
}

func (c *Controller) handleConnClose() {
	c.mu.Lock()
	if c.state.Terminal() {
		// Local teardown or a fault that already surfaced.
		c.mu.Unlock()
		return
	}
	c.setStateLocked(StateErrored)
	c.lastErr = ErrDisconnected
	h := c.handlers
	c.mu.Unlock()

	if h.OnStateChange != nil {
		h.OnStateChange(StateErrored)
	}
	if h.OnError != nil {
		h.OnError(ErrDisconnected)
	}
}

// =============================================================================
// REVEAL EVENTS
// =============================================================================

func (c *Controller) handleRevealTick(partial string) {
	c.mu.Lock()
	onPartial := c.handlers.OnPartial
	c.mu.Unlock()

	if onPartial != nil {
		onPartial(partial)
	}
}

// handleRevealComplete commits the revealed text as an Assistant message.
// Partial text never reaches the transcript; only this commit does.
func (c *Controller) handleRevealComplete(full string) {
	c.mu.Lock()
	if c.state == StateClosed {
		c.mu.Unlock()
		return
	}
	c.transcript.Append(model.NewAssistantMessage(full))
	var notify func(State)
	if c.state == StateGenerating {
		c.setStateLocked(StateReady)
		notify = c.handlers.OnStateChange
	}
	h := c.handlers
	c.mu.Unlock()

	if h.OnPartial != nil {
		h.OnPartial("")
	}
	if h.OnTranscriptChange != nil {
		h.OnTranscriptChange()
	}
	if notify != nil {
		notify(StateReady)
	}
}

// =============================================================================
// HELPERS
// =============================================================================

// setStateLocked records a transition. Caller holds the mutex.
func (c *Controller) setStateLocked(s State) {
	c.state = s
}
