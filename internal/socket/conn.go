// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package socket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// =============================================================================
// CONNECTION STATE
// =============================================================================

// State is the lifecycle state of a session connection.
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateOpen
	StateClosing
	StateClosed
	StateErrored
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	case StateErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// Callbacks receive connection events. All fields are optional.
// OnMessage is invoked from the read loop goroutine with the raw frame
// payload; callers decode it (see DecodeResponse). OnClose fires at most
// once per connection.
type Callbacks struct {
	OnMessage func(data []byte)
	OnOpen    func()
	OnClose   func()
	OnError   func(err error)
}

// =============================================================================
// CONNECTION
// =============================================================================

// Conn is one live channel to the backend, exclusively owned by one session.
// A Conn is single-use: after Close or a transport error it cannot be
// reopened; the caller creates a fresh Conn to reconnect.
type Conn struct {
	mu       sync.Mutex
	endpoint string
	cb       Callbacks
	state    State
	ws       *websocket.Conn

	// writeMu serializes frame writes; gorilla permits one concurrent writer.
	writeMu sync.Mutex

	closeNotified bool
}

// writeWait bounds how long a close handshake frame may block.
const writeWait = 5 * time.Second

// NewConn creates an unopened connection to the given ws:// or wss://
// endpoint.
func NewConn(endpoint string, cb Callbacks) *Conn {
	return &Conn{
		endpoint: endpoint,
		cb:       cb,
		state:    StateIdle,
	}
}

// State returns the current lifecycle state.
func (c *Conn) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Endpoint returns the channel URL.
func (c *Conn) Endpoint() string {
	return c.endpoint
}

// =============================================================================
// OPEN
// =============================================================================

// Open establishes the channel. Calling Open while connecting or open fails
// with ErrAlreadyConnected; calling it after close or a transport error fails
// with ErrClosed.
func (c *Conn) Open(ctx context.Context) error {
	c.mu.Lock()
	switch c.state {
	case StateConnecting, StateOpen:
		c.mu.Unlock()
		return ErrAlreadyConnected
	case StateClosing, StateClosed, StateErrored:
		c.mu.Unlock()
		return ErrClosed
	}
	c.state = StateConnecting
	c.mu.Unlock()

	ws, resp, err := websocket.DefaultDialer.DialContext(ctx, c.endpoint, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		connErr := &ConnError{Type: ErrTypeTransport, Message: "failed to connect to " + c.endpoint, Cause: err}
		c.mu.Lock()
		c.state = StateErrored
		onError := c.cb.OnError
		c.mu.Unlock()
		if onError != nil {
			onError(connErr)
		}
		return connErr
	}

	c.mu.Lock()
	c.ws = ws
	c.state = StateOpen
	onOpen := c.cb.OnOpen
	c.mu.Unlock()

	if onOpen != nil {
		onOpen()
	}

	go c.readLoop(ws)
	return nil
}

// =============================================================================
// SEND
// =============================================================================

// Send delivers one chat payload. Valid only while the channel is open;
// otherwise the caller must not assume delivery.
func (c *Conn) Send(req ChatRequest) error {
	data, err := json.Marshal(req)
	if err != nil {
		return &ConnError{Type: ErrTypeSendFailed, Message: "failed to encode payload", Cause: err}
	}
	return c.write(websocket.TextMessage, data)
}

// SendBinary delivers one raw audio chunk on the voice path.
func (c *Conn) SendBinary(chunk []byte) error {
	return c.write(websocket.BinaryMessage, chunk)
}

// SendStop signals end of utterance on the voice path.
func (c *Conn) SendStop() error {
	data, err := json.Marshal(NewStopEvent())
	if err != nil {
		return &ConnError{Type: ErrTypeSendFailed, Message: "failed to encode stop event", Cause: err}
	}
	return c.write(websocket.TextMessage, data)
}

func (c *Conn) write(messageType int, data []byte) error {
	c.mu.Lock()
	if c.state != StateOpen {
		c.mu.Unlock()
		return ErrNotConnected
	}
	ws := c.ws
	c.mu.Unlock()

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := ws.WriteMessage(messageType, data); err != nil {
		return &ConnError{Type: ErrTypeSendFailed, Message: "send failed", Cause: err}
	}
	return nil
}

// =============================================================================
// CLOSE
// =============================================================================

// Close releases the channel. The release happens exactly once; calling
// Close again is a safe no-op, including from the errored state.
func (c *Conn) Close() error {
	c.mu.Lock()
	switch c.state {
	case StateClosing, StateClosed:
		c.mu.Unlock()
		return nil
	case StateIdle:
		// Never opened: nothing to release, no close event.
		c.state = StateClosed
		c.mu.Unlock()
		return nil
	}
	c.state = StateClosing
	ws := c.ws
	c.mu.Unlock()

	if ws != nil {
		// Best-effort close handshake; the read loop unblocks either way.
		deadline := time.Now().Add(writeWait)
		c.writeMu.Lock()
		ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		c.writeMu.Unlock()
		ws.Close()
	}

	c.mu.Lock()
	c.state = StateClosed
	c.mu.Unlock()
	c.notifyClose()
	return nil
}

// notifyClose fires OnClose at most once per connection.
func (c *Conn) notifyClose() {
	c.mu.Lock()
	if c.closeNotified {
		c.mu.Unlock()
		return
	}
	c.closeNotified = true
	onClose := c.cb.OnClose
	c.mu.Unlock()

	if onClose != nil {
		onClose()
	}
}

// =============================================================================
// READ LOOP
// =============================================================================

// readLoop pumps inbound frames to OnMessage until the channel drops.
// Inbound frames are delivered in arrival order; ordering is owned by the
// transport, not re-derived here.
func (c *Conn) readLoop(ws *websocket.Conn) {
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			c.handleReadError(err)
			return
		}

		c.mu.Lock()
		onMessage := c.cb.OnMessage
		c.mu.Unlock()
		if onMessage != nil {
			onMessage(data)
		}
	}
}

// handleReadError finalizes the connection when the read loop drops out.
// A locally initiated close lands in Closed; everything else is a transport
// fault that lands in Errored and surfaces through OnError.
func (c *Conn) handleReadError(err error) {
	c.mu.Lock()
	switch c.state {
	case StateClosing, StateClosed:
		c.state = StateClosed
		c.mu.Unlock()
		c.notifyClose()
		return
	}

	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		// Orderly close from the peer.
		c.state = StateClosed
		c.mu.Unlock()
		c.notifyClose()
		return
	}

	c.state = StateErrored
	onError := c.cb.OnError
	c.mu.Unlock()

	if onError != nil {
		onError(&ConnError{Type: ErrTypeTransport, Message: "channel fault", Cause: err})
	}
	c.notifyClose()
}
