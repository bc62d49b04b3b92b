// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package voice implements the voice chat channel: PCM audio is pumped to
// the server in fixed-interval binary chunks while transcript text streams
// back, and a stop event asks the server to finalize the transcription.
//
// A Meter tracks the input level so the UI can draw a live waveform.
package voice
