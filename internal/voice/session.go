// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package voice

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/mikilabs/miki-tui/internal/socket"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNoSource means the session was started without an audio source.
	ErrNoSource = errors.New("no audio source configured")

	// ErrAlreadyRecording means Start was called while recording.
	ErrAlreadyRecording = errors.New("recording already in progress")

	// ErrNotRecording means Stop was called while idle.
	ErrNotRecording = errors.New("no recording in progress")
)

// =============================================================================
// CONNECTION INTERFACE
// =============================================================================

// Conn is the slice of the voice connection the session needs.
// *socket.Conn satisfies it; tests inject fakes.
type Conn interface {
	Open(ctx context.Context) error
	SendBinary(data []byte) error
	SendStop() error
	Close() error
}

// ConnFactory builds the connection with the session's callbacks wired in.
type ConnFactory func(cb socket.Callbacks) Conn

// =============================================================================
// HANDLERS AND CONFIGURATION
// =============================================================================

// Handlers receive voice session events. All fields are optional and may be
// invoked from pump and socket goroutines.
type Handlers struct {
	// OnLevel delivers the smoothed input level after each chunk.
	OnLevel func(level float64)
	// OnPartial delivers transcript text streamed while recording.
	OnPartial func(text string)
	// OnTranscript delivers the final transcript after Stop, exactly once.
	// The chat panel appends it to the compose buffer.
	OnTranscript func(text string)
	// OnError fires on transport faults.
	OnError func(err error)
}

// Config configures one voice session.
type Config struct {
	// Endpoint is the voice channel URL (ignored when ConnFactory is set).
	Endpoint string

	// Source supplies raw PCM16 audio. Chunks are read and shipped on each
	// tick until it returns io.EOF or the session stops.
	Source io.Reader

	// ChunkInterval is the pump cadence (default 250ms).
	ChunkInterval time.Duration

	// ChunkSize is how many bytes each chunk carries (default 4096).
	ChunkSize int

	Handlers Handlers

	ConnFactory ConnFactory
}

// =============================================================================
// VOICE SESSION
// =============================================================================

// Session pumps audio from the source to the server and relays transcript
// text back through the handlers.
type Session struct {
	mu        sync.Mutex
	recording bool
	stopped   bool
	finalSent bool

	source   io.Reader
	interval time.Duration
	chunk    int
	handlers Handlers
	conn     Conn
	meter    *Meter

	cancel context.CancelFunc
	done   chan struct{}
}

// NewSession creates a voice session in the idle state.
func NewSession(cfg Config) *Session {
	s := &Session{
		source:   cfg.Source,
		interval: cfg.ChunkInterval,
		chunk:    cfg.ChunkSize,
		handlers: cfg.Handlers,
		meter:    NewMeter(0.7),
	}
	if s.interval <= 0 {
		s.interval = 250 * time.Millisecond
	}
	if s.chunk <= 0 {
		s.chunk = 4096
	}

	factory := cfg.ConnFactory
	if factory == nil {
		endpoint := cfg.Endpoint
		factory = func(cb socket.Callbacks) Conn {
			return socket.NewConn(endpoint, cb)
		}
	}
	s.conn = factory(socket.Callbacks{
		OnMessage: s.handleInbound,
		OnError:   s.handleConnError,
	})
	return s
}

// Meter returns the session's input level meter.
func (s *Session) Meter() *Meter {
	return s.meter
}

// Recording reports whether audio is being pumped.
func (s *Session) Recording() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recording
}

// =============================================================================
// LIFECYCLE
// =============================================================================

// Start opens the channel and begins pumping audio chunks.
func (s *Session) Start(ctx context.Context) error {
	if s.source == nil {
		return ErrNoSource
	}

	s.mu.Lock()
	if s.recording {
		s.mu.Unlock()
		return ErrAlreadyRecording
	}
	s.recording = true
	s.stopped = false
	s.finalSent = false
	s.mu.Unlock()

	if err := s.conn.Open(ctx); err != nil {
		s.mu.Lock()
		s.recording = false
		s.mu.Unlock()
		return err
	}

	pumpCtx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	s.cancel = cancel
	s.done = make(chan struct{})
	done := s.done
	s.mu.Unlock()

	go s.pump(pumpCtx, done)
	return nil
}

// pump ships one chunk per tick until the source drains or Stop is called.
func (s *Session) pump(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	buf := make([]byte, s.chunk)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := io.ReadFull(s.source, buf)
			if n > 0 {
				level := s.meter.Update(buf[:n])
				if s.handlers.OnLevel != nil {
					s.handlers.OnLevel(level)
				}
				if sendErr := s.conn.SendBinary(append([]byte(nil), buf[:n]...)); sendErr != nil {
					if s.handlers.OnError != nil {
						s.handlers.OnError(sendErr)
					}
					return
				}
			}
			if err != nil {
				// Source drained; wait for Stop.
				return
			}
		}
	}
}

// Stop ends the recording: the pump halts, the stop event is sent, and the
// next transcript frame is delivered as final.
func (s *Session) Stop() error {
	s.mu.Lock()
	if !s.recording {
		s.mu.Unlock()
		return ErrNotRecording
	}
	s.recording = false
	s.stopped = true
	cancel := s.cancel
	done := s.done
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
	s.meter.Reset()

	return s.conn.SendStop()
}

// Teardown closes the channel. Safe to call in any state.
func (s *Session) Teardown() error {
	s.mu.Lock()
	s.recording = false
	s.stopped = true
	s.finalSent = true
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	return s.conn.Close()
}

// =============================================================================
// CONNECTION EVENTS
// =============================================================================

// handleInbound routes transcript text: streamed frames while recording are
// partial, the first frame after Stop is the final transcript.
func (s *Session) handleInbound(data []byte) {
	text := string(data)

	s.mu.Lock()
	final := s.stopped && !s.finalSent
	if final {
		s.finalSent = true
	}
	ignore := s.stopped && !final
	s.mu.Unlock()

	if ignore {
		return
	}
	if final {
		if s.handlers.OnTranscript != nil {
			s.handlers.OnTranscript(text)
		}
		return
	}
	if s.handlers.OnPartial != nil {
		s.handlers.OnPartial(text)
	}
}

func (s *Session) handleConnError(err error) {
	if s.handlers.OnError != nil {
		s.handlers.OnError(err)
	}
}
