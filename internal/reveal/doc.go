// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package reveal simulates progressive arrival of an already fully-received
// assistant response.
//
// The Scheduler emits growing rune prefixes of the response at a fixed
// cadence, then fires a single completion callback. At most one reveal is
// active at a time: starting a new reveal cancels the previous one, and the
// previous completion callback is never invoked. Cancellation uses a
// generation token checked on every emission, so no tick can fire after
// Cancel returns.
package reveal
