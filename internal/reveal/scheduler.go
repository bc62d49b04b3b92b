// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package reveal

import (
	"sync"
	"time"
)

// DefaultInterval is the cadence of the character reveal, matching the
// original 30ms-per-character typing effect.
const DefaultInterval = 30 * time.Millisecond

// TickFunc receives each growing prefix of the revealed text.
type TickFunc func(partial string)

// CompleteFunc receives the full text exactly once when the reveal finishes.
type CompleteFunc func(full string)

// =============================================================================
// SCHEDULER
// =============================================================================

// Scheduler turns one fully-received response into a time-sliced reveal.
//
// Callbacks are invoked while the scheduler's lock is held, which is what
// makes the cancellation guarantee strict: once Cancel (or a replacing Start)
// returns, no further callback for the old reveal can fire. Callbacks must
// therefore not call back into the Scheduler.
type Scheduler struct {
	mu       sync.Mutex
	interval time.Duration
	gen      uint64
	active   bool
}

// NewScheduler creates a scheduler with the given tick interval.
// A non-positive interval falls back to DefaultInterval.
func NewScheduler(interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{interval: interval}
}

// =============================================================================
// REVEAL LIFECYCLE
// =============================================================================

// Start begins revealing text. Any reveal still in flight is cancelled first
// and its completion callback is discarded; only the newest reveal reaches
// completion. Empty text completes immediately with zero ticks.
func (s *Scheduler) Start(text string, onTick TickFunc, onComplete CompleteFunc) {
	s.mu.Lock()
	s.gen++
	gen := s.gen

	runes := []rune(text)
	if len(runes) == 0 {
		s.active = false
		s.mu.Unlock()
		if onComplete != nil {
			onComplete(text)
		}
		return
	}

	s.active = true
	interval := s.interval
	s.mu.Unlock()

	go s.run(gen, runes, text, interval, onTick, onComplete)
}

// Cancel stops the active reveal immediately. Safe to call when idle.
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.active = false
}

// Active reports whether a reveal is currently in flight.
func (s *Scheduler) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Interval returns the configured tick interval.
func (s *Scheduler) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

// =============================================================================
// TIMER LOOP
// =============================================================================

// run emits prefixes on a ticker until done or superseded.
func (s *Scheduler) run(gen uint64, runes []rune, full string, interval time.Duration, onTick TickFunc, onComplete CompleteFunc) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for i := 1; i <= len(runes); i++ {
		<-ticker.C
		if !s.emitTick(gen, string(runes[:i]), onTick) {
			return
		}
	}
	s.emitComplete(gen, full, onComplete)
}

// emitTick delivers one prefix if this reveal is still current.
// Returns false when the reveal has been superseded or cancelled.
func (s *Scheduler) emitTick(gen uint64, partial string, onTick TickFunc) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return false
	}
	if onTick != nil {
		onTick(partial)
	}
	return true
}

// emitComplete delivers the completion callback if this reveal is still
// current, and marks the scheduler idle.
func (s *Scheduler) emitComplete(gen uint64, full string, onComplete CompleteFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return
	}
	s.active = false
	if onComplete != nil {
		onComplete(full)
	}
}
