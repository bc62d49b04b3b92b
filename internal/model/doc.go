// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat messages and personas.
//
// A Message is immutable once created: the controller creates one per user
// send and one per completed assistant reveal, and nothing mutates or deletes
// them afterwards. A Persona is a named conditioning context selected before
// a session starts and fixed for its lifetime.
package model
