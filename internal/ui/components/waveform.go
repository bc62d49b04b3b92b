// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/mikilabs/miki-tui/internal/ui/styles"
)

// =============================================================================
// VOICE WAVEFORM
// =============================================================================

// waveRunes maps level buckets to block characters, quietest first.
var waveRunes = []rune("▁▂▃▄▅▆▇█")

// Waveform renders a rolling input-level history as a bar strip, the way
// the web client animates the mic button while recording.
type Waveform struct {
	Theme *styles.Theme
	Width int

	levels []float64
}

// NewWaveform creates a waveform for the given display width.
func NewWaveform(theme *styles.Theme, width int) *Waveform {
	if width < 1 {
		width = 1
	}
	return &Waveform{Theme: theme, Width: width}
}

// Push records one level sample in [0, 1]. Older samples scroll left.
func (w *Waveform) Push(level float64) {
	if level < 0 {
		level = 0
	}
	if level > 1 {
		level = 1
	}
	w.levels = append(w.levels, level)
	if len(w.levels) > w.Width {
		w.levels = w.levels[len(w.levels)-w.Width:]
	}
}

// Reset clears the history.
func (w *Waveform) Reset() {
	w.levels = nil
}

// View renders the waveform, left-padded with the quietest rune.
func (w *Waveform) View() string {
	var sb strings.Builder
	for i := 0; i < w.Width-len(w.levels); i++ {
		sb.WriteRune(waveRunes[0])
	}
	for _, level := range w.levels {
		idx := int(level * float64(len(waveRunes)))
		if idx >= len(waveRunes) {
			idx = len(waveRunes) - 1
		}
		sb.WriteRune(waveRunes[idx])
	}
	if w.Theme == nil {
		return sb.String()
	}
	return w.Theme.Waveform.Render(sb.String())
}
