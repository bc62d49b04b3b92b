// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package voice

import (
	"encoding/binary"
	"math"
	"testing"
)

// pcmConstant builds n samples of constant amplitude.
func pcmConstant(n int, amplitude int16) []byte {
	buf := make([]byte, n*2)
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(amplitude))
	}
	return buf
}

func TestMeterSilence(t *testing.T) {
	m := NewMeter(0)
	if level := m.Update(pcmConstant(256, 0)); level != 0 {
		t.Errorf("Silence should meter at 0, got %f", level)
	}
}

func TestMeterFullScale(t *testing.T) {
	m := NewMeter(0)
	level := m.Update(pcmConstant(256, math.MaxInt16))
	if level < 0.99 || level > 1.0 {
		t.Errorf("Full-scale signal should meter near 1.0, got %f", level)
	}
}

func TestMeterHalfScale(t *testing.T) {
	m := NewMeter(0)
	level := m.Update(pcmConstant(256, math.MaxInt16/2))
	if math.Abs(level-0.5) > 0.01 {
		t.Errorf("Half-scale signal should meter near 0.5, got %f", level)
	}
}

func TestMeterSmoothing(t *testing.T) {
	m := NewMeter(0.5)

	first := m.Update(pcmConstant(256, math.MaxInt16))
	if first > 0.51 {
		t.Errorf("Smoothed first reading should be about half, got %f", first)
	}

	// Repeated loud chunks converge upward.
	var last float64
	for i := 0; i < 20; i++ {
		last = m.Update(pcmConstant(256, math.MaxInt16))
	}
	if last <= first {
		t.Errorf("Level should rise with sustained signal: first %f, last %f", first, last)
	}

	m.Reset()
	if m.Level() != 0 {
		t.Errorf("Reset should zero the level, got %f", m.Level())
	}
}

func TestMeterEmptyChunk(t *testing.T) {
	m := NewMeter(0)
	m.Update(pcmConstant(256, math.MaxInt16/4))
	before := m.Level()
	m.Update(nil)
	// An empty chunk reads as silence and pulls the level down, never panics.
	if m.Level() > before {
		t.Errorf("Empty chunk should not raise the level")
	}
}

func TestMeterOddByteIgnored(t *testing.T) {
	m := NewMeter(0)
	buf := append(pcmConstant(4, 1000), 0x7f)
	// Must not panic on the trailing byte.
	m.Update(buf)
}
