// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides the conversation library for miki.
//
// Saved chats live in a local SQLite database (~/.miki/library.db) with
// support for listing, search, delete, and Markdown export.
//
// # Usage
//
// Open the library and save a conversation:
//
//	lib, err := storage.OpenDefault()
//	id, err := lib.Save(&storage.Conversation{Messages: transcript.All()})
//
// List and load:
//
//	metas, err := lib.List()
//	conv, err := lib.Get(metas[0].ID)
package storage
