// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package transcript provides the append-only message log for one session.
//
// The store never reorders, mutates, or deletes committed entries. All()
// returns a snapshot: appends made after the snapshot was taken are not
// visible through it.
package transcript
