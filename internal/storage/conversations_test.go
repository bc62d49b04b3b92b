// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikilabs/miki-tui/internal/model"
)

func openTestLibrary(t *testing.T) *Library {
	t.Helper()
	lib, err := Open(filepath.Join(t.TempDir(), "library.db"))
	require.NoError(t, err)
	t.Cleanup(func() { lib.Close() })
	return lib
}

func sampleConversation() *Conversation {
	return &Conversation{
		Persona: "Lexi the Writer",
		Messages: []*model.Message{
			model.NewUserMessage("Help me write a poem"),
			model.NewAssistantMessage("Of course! What should it be about?"),
			model.NewUserMessage("The ocean at night"),
		},
	}
}

// =============================================================================
// SAVE AND GET
// =============================================================================

func TestSaveAndGet(t *testing.T) {
	lib := openTestLibrary(t)

	id, err := lib.Save(sampleConversation())
	require.NoError(t, err)
	require.NotEmpty(t, id)

	conv, err := lib.Get(id)
	require.NoError(t, err)

	assert.Equal(t, "Help me write a poem", conv.Title)
	assert.Equal(t, "Lexi the Writer", conv.Persona)
	require.Len(t, conv.Messages, 3)

	// Insertion order is preserved.
	assert.Equal(t, model.SenderUser, conv.Messages[0].Sender)
	assert.Equal(t, model.SenderAssistant, conv.Messages[1].Sender)
	assert.Equal(t, "The ocean at night", conv.Messages[2].Text)
	assert.False(t, conv.CreatedAt.IsZero())
}

func TestSaveReplacesMessages(t *testing.T) {
	lib := openTestLibrary(t)

	conv := sampleConversation()
	id, err := lib.Save(conv)
	require.NoError(t, err)

	conv.Messages = append(conv.Messages, model.NewAssistantMessage("Here is a draft."))
	_, err = lib.Save(conv)
	require.NoError(t, err)

	loaded, err := lib.Get(id)
	require.NoError(t, err)
	assert.Len(t, loaded.Messages, 4)

	metas, err := lib.List()
	require.NoError(t, err)
	assert.Len(t, metas, 1, "resaving must not duplicate the conversation")
}

func TestGetMissing(t *testing.T) {
	lib := openTestLibrary(t)

	_, err := lib.Get("no-such-id")
	assert.True(t, errors.Is(err, ErrConversationNotFound))
}

func TestSaveEmptyTranscriptTitle(t *testing.T) {
	lib := openTestLibrary(t)

	id, err := lib.Save(&Conversation{})
	require.NoError(t, err)

	conv, err := lib.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "New conversation", conv.Title)
}

// =============================================================================
// LIST AND SEARCH
// =============================================================================

func TestListOrdering(t *testing.T) {
	lib := openTestLibrary(t)

	first, err := lib.Save(&Conversation{Messages: []*model.Message{
		model.NewUserMessage("first chat"),
	}})
	require.NoError(t, err)

	second, err := lib.Save(&Conversation{Messages: []*model.Message{
		model.NewUserMessage("second chat"),
	}})
	require.NoError(t, err)

	// Touch the first so it becomes the most recent.
	conv, err := lib.Get(first)
	require.NoError(t, err)
	_, err = lib.Save(conv)
	require.NoError(t, err)

	metas, err := lib.List()
	require.NoError(t, err)
	require.Len(t, metas, 2)
	assert.Equal(t, first, metas[0].ID)
	assert.Equal(t, second, metas[1].ID)
	assert.Equal(t, 1, metas[0].MessageCount)
	assert.Equal(t, "first chat", metas[0].Preview)
}

func TestSearch(t *testing.T) {
	lib := openTestLibrary(t)

	_, err := lib.Save(&Conversation{Messages: []*model.Message{
		model.NewUserMessage("Tell me about sailing"),
		model.NewAssistantMessage("Sailing is the art of moving a boat with wind."),
	}})
	require.NoError(t, err)
	_, err = lib.Save(&Conversation{Messages: []*model.Message{
		model.NewUserMessage("Recipe for bread"),
	}})
	require.NoError(t, err)

	// Title match.
	results, err := lib.Search("sailing")
	require.NoError(t, err)
	assert.Len(t, results, 1)

	// Message body match, case-insensitive.
	results, err = lib.Search("WIND")
	require.NoError(t, err)
	assert.Len(t, results, 1)

	// No match.
	results, err = lib.Search("astronomy")
	require.NoError(t, err)
	assert.Empty(t, results)

	// Empty query lists everything.
	results, err = lib.Search("")
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

// =============================================================================
// DELETE AND PRUNING
// =============================================================================

func TestDelete(t *testing.T) {
	lib := openTestLibrary(t)

	id, err := lib.Save(sampleConversation())
	require.NoError(t, err)

	require.NoError(t, lib.Delete(id))

	_, err = lib.Get(id)
	assert.True(t, errors.Is(err, ErrConversationNotFound))

	// Deleting again reports not found.
	assert.True(t, errors.Is(lib.Delete(id), ErrConversationNotFound))
}

func TestEnforceLimit(t *testing.T) {
	lib := openTestLibrary(t)
	lib.MaxConversations = 3

	for i := 0; i < 5; i++ {
		_, err := lib.Save(&Conversation{Messages: []*model.Message{
			model.NewUserMessage("chat"),
		}})
		require.NoError(t, err)
	}

	metas, err := lib.List()
	require.NoError(t, err)
	assert.Len(t, metas, 3)
}

func TestClear(t *testing.T) {
	lib := openTestLibrary(t)

	_, err := lib.Save(sampleConversation())
	require.NoError(t, err)
	require.NoError(t, lib.Clear())

	metas, err := lib.List()
	require.NoError(t, err)
	assert.Empty(t, metas)
}

// =============================================================================
// EXPORT
// =============================================================================

func TestExportMarkdown(t *testing.T) {
	lib := openTestLibrary(t)

	id, err := lib.Save(sampleConversation())
	require.NoError(t, err)

	conv, err := lib.Get(id)
	require.NoError(t, err)

	md := conv.ExportMarkdown()
	assert.Contains(t, md, "# Help me write a poem")
	assert.Contains(t, md, "**You**")
	assert.Contains(t, md, "**Miki**")
	assert.Contains(t, md, "The ocean at night")
	assert.Contains(t, md, "Persona: Lexi the Writer")
}
