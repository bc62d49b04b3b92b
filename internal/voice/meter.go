// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package voice

import (
	"encoding/binary"
	"math"
	"sync"
)

// =============================================================================
// LEVEL METER
// =============================================================================

// Meter tracks the input level of a PCM16 little-endian stream as a value in
// [0, 1]. Levels are exponentially smoothed so the display doesn't flicker.
type Meter struct {
	mu        sync.Mutex
	level     float64
	smoothing float64
}

// NewMeter creates a meter. smoothing in [0, 1) is the weight of the old
// level; 0 means no smoothing.
func NewMeter(smoothing float64) *Meter {
	if smoothing < 0 || smoothing >= 1 {
		smoothing = 0.7
	}
	return &Meter{smoothing: smoothing}
}

// Update feeds one chunk of PCM16 samples and returns the new level.
// Odd trailing bytes are ignored.
func (m *Meter) Update(pcm []byte) float64 {
	rms := rmsPCM16(pcm)

	m.mu.Lock()
	m.level = m.smoothing*m.level + (1-m.smoothing)*rms
	level := m.level
	m.mu.Unlock()
	return level
}

// Level returns the current smoothed level.
func (m *Meter) Level() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.level
}

// Reset drops the level to zero, for when recording stops.
func (m *Meter) Reset() {
	m.mu.Lock()
	m.level = 0
	m.mu.Unlock()
}

// rmsPCM16 computes the root mean square of 16-bit LE samples, normalized
// to [0, 1].
func rmsPCM16(pcm []byte) float64 {
	n := len(pcm) / 2
	if n == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		s := int16(binary.LittleEndian.Uint16(pcm[i*2:]))
		v := float64(s) / 32768.0
		sum += v * v
	}
	return math.Sqrt(sum / float64(n))
}
