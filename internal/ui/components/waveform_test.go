// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"
)

func TestWaveformFixedWidth(t *testing.T) {
	w := NewWaveform(nil, 8)
	if got := len([]rune(w.View())); got != 8 {
		t.Fatalf("Empty waveform width = %d, want 8", got)
	}

	for i := 0; i < 20; i++ {
		w.Push(0.5)
	}
	if got := len([]rune(w.View())); got != 8 {
		t.Fatalf("Full waveform width = %d, want 8", got)
	}
}

func TestWaveformLevels(t *testing.T) {
	w := NewWaveform(nil, 3)
	w.Push(0)
	w.Push(0.5)
	w.Push(1)

	out := []rune(w.View())
	if out[0] != '▁' {
		t.Errorf("Silence rune = %q, want ▁", out[0])
	}
	if out[2] != '█' {
		t.Errorf("Full-scale rune = %q, want █", out[2])
	}
}

func TestWaveformClampsAndScrolls(t *testing.T) {
	w := NewWaveform(nil, 2)
	w.Push(-1)
	w.Push(2)
	w.Push(2)

	out := w.View()
	if strings.ContainsRune(out, '▁') {
		t.Errorf("Old quiet sample should have scrolled off: %q", out)
	}
}

func TestWaveformReset(t *testing.T) {
	w := NewWaveform(nil, 4)
	w.Push(1)
	w.Reset()
	if got := w.View(); got != "▁▁▁▁" {
		t.Errorf("Reset waveform = %q, want all-quiet", got)
	}
}
