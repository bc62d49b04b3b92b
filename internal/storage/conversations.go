// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/mikilabs/miki-tui/internal/model"
	"github.com/mikilabs/miki-tui/internal/util"
)

// =============================================================================
// TYPES
// =============================================================================

// Conversation is a saved chat session.
type Conversation struct {
	ID        string
	Title     string
	Persona   string
	CreatedAt time.Time
	UpdatedAt time.Time

	// Messages in insertion order.
	Messages []*model.Message
}

// ConversationMeta is the listing view of a conversation.
type ConversationMeta struct {
	ID           string
	Title        string
	Persona      string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	MessageCount int
	Preview      string
}

// ErrConversationNotFound is returned when a conversation doesn't exist.
var ErrConversationNotFound = errors.New("conversation not found")

// =============================================================================
// SCHEMA
// =============================================================================

const schema = `
CREATE TABLE IF NOT EXISTS conversations (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	persona    TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
	seq             INTEGER PRIMARY KEY AUTOINCREMENT,
	conversation_id TEXT NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
	msg_id          TEXT NOT NULL,
	sender          TEXT NOT NULL,
	text            TEXT NOT NULL,
	timestamp       INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_messages_conversation
	ON messages(conversation_id);

CREATE INDEX IF NOT EXISTS idx_conversations_updated
	ON conversations(updated_at);
`

// =============================================================================
// LIBRARY
// =============================================================================

// Library persists conversations in a local SQLite database.
type Library struct {
	db *sql.DB

	// MaxConversations limits stored conversations (0 = unlimited).
	// Oldest are pruned after each save.
	MaxConversations int
}

// DefaultPath returns the default library database path (~/.miki/library.db).
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".miki", "library.db"), nil
}

// Open opens (or creates) the library database at path.
func Open(path string) (*Library, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite supports one writer at a time; keep the pool at one connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Library{db: db, MaxConversations: 100}, nil
}

// OpenDefault opens the library at the default path.
func OpenDefault() (*Library, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return Open(path)
}

// Close closes the database.
func (l *Library) Close() error {
	return l.db.Close()
}

// =============================================================================
// SAVE OPERATIONS
// =============================================================================

// Save persists a conversation and returns its ID. An empty ID gets a fresh
// one; saving an existing ID replaces its messages.
func (l *Library) Save(conv *Conversation) (string, error) {
	if conv.ID == "" {
		conv.ID = uuid.NewString()
	}
	if conv.Title == "" {
		conv.Title = deriveTitle(conv.Messages)
	}
	conv.UpdatedAt = time.Now()
	if conv.CreatedAt.IsZero() {
		conv.CreatedAt = conv.UpdatedAt
	}

	tx, err := l.db.Begin()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO conversations (id, title, persona, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			persona = excluded.persona,
			updated_at = excluded.updated_at
	`, conv.ID, conv.Title, conv.Persona, conv.CreatedAt.UnixNano(), conv.UpdatedAt.UnixNano())
	if err != nil {
		return "", err
	}

	// Replace messages wholesale; the transcript is the source of truth.
	if _, err := tx.Exec("DELETE FROM messages WHERE conversation_id = ?", conv.ID); err != nil {
		return "", err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO messages (conversation_id, msg_id, sender, text, timestamp)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return "", err
	}
	defer stmt.Close()

	for _, msg := range conv.Messages {
		if _, err := stmt.Exec(conv.ID, msg.ID, string(msg.Sender), msg.Text, msg.Timestamp.UnixNano()); err != nil {
			return "", err
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}

	if l.MaxConversations > 0 {
		l.enforceLimit()
	}
	return conv.ID, nil
}

// deriveTitle builds a title from the first user message.
func deriveTitle(messages []*model.Message) string {
	for _, msg := range messages {
		if msg.Sender == model.SenderUser && msg.Text != "" {
			title := strings.ReplaceAll(msg.Text, "\n", " ")
			title = strings.ReplaceAll(title, "\r", "")
			return util.TruncateRunes(title, 50)
		}
	}
	return "New conversation"
}

// enforceLimit prunes the oldest conversations when over the limit.
func (l *Library) enforceLimit() {
	l.db.Exec(`
		DELETE FROM conversations WHERE id IN (
			SELECT id FROM conversations
			ORDER BY updated_at DESC
			LIMIT -1 OFFSET ?
		)
	`, l.MaxConversations)
}

// =============================================================================
// LOAD OPERATIONS
// =============================================================================

// Get retrieves a conversation by ID with its messages in insertion order.
func (l *Library) Get(id string) (*Conversation, error) {
	conv := &Conversation{ID: id}

	var createdAt, updatedAt int64
	err := l.db.QueryRow(`
		SELECT title, persona, created_at, updated_at
		FROM conversations WHERE id = ?
	`, id).Scan(&conv.Title, &conv.Persona, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrConversationNotFound
	}
	if err != nil {
		return nil, err
	}
	conv.CreatedAt = time.Unix(0, createdAt)
	conv.UpdatedAt = time.Unix(0, updatedAt)

	rows, err := l.db.Query(`
		SELECT msg_id, sender, text, timestamp
		FROM messages WHERE conversation_id = ?
		ORDER BY seq
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var msg model.Message
		var sender string
		var ts int64
		if err := rows.Scan(&msg.ID, &sender, &msg.Text, &ts); err != nil {
			return nil, err
		}
		msg.Sender = model.Sender(sender)
		msg.Timestamp = time.Unix(0, ts)
		conv.Messages = append(conv.Messages, &msg)
	}
	return conv, rows.Err()
}

// =============================================================================
// LIST OPERATIONS
// =============================================================================

// List returns all saved conversations, most recently updated first.
func (l *Library) List() ([]ConversationMeta, error) {
	rows, err := l.db.Query(`
		SELECT
			c.id, c.title, c.persona, c.created_at, c.updated_at,
			COUNT(m.seq),
			COALESCE((
				SELECT text FROM messages
				WHERE conversation_id = c.id AND sender = ?
				ORDER BY seq LIMIT 1
			), '')
		FROM conversations c
		LEFT JOIN messages m ON m.conversation_id = c.id
		GROUP BY c.id
		ORDER BY c.updated_at DESC
	`, string(model.SenderUser))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var metas []ConversationMeta
	for rows.Next() {
		var meta ConversationMeta
		var createdAt, updatedAt int64
		var preview string
		if err := rows.Scan(&meta.ID, &meta.Title, &meta.Persona, &createdAt, &updatedAt, &meta.MessageCount, &preview); err != nil {
			return nil, err
		}
		meta.CreatedAt = time.Unix(0, createdAt)
		meta.UpdatedAt = time.Unix(0, updatedAt)
		meta.Preview = util.TruncateRunes(preview, 80)
		metas = append(metas, meta)
	}
	return metas, rows.Err()
}

// Search finds conversations whose title or message text contains the query,
// case-insensitive. An empty query lists everything.
func (l *Library) Search(query string) ([]ConversationMeta, error) {
	all, err := l.List()
	if err != nil {
		return nil, err
	}
	if query == "" {
		return all, nil
	}

	query = strings.ToLower(query)
	var results []ConversationMeta
	for _, meta := range all {
		if strings.Contains(strings.ToLower(meta.Title), query) ||
			strings.Contains(strings.ToLower(meta.Preview), query) {
			results = append(results, meta)
			continue
		}
		match, err := l.messagesContain(meta.ID, query)
		if err != nil {
			return nil, err
		}
		if match {
			results = append(results, meta)
		}
	}
	return results, nil
}

func (l *Library) messagesContain(id, lowered string) (bool, error) {
	var n int
	err := l.db.QueryRow(`
		SELECT COUNT(*) FROM messages
		WHERE conversation_id = ? AND instr(lower(text), ?) > 0
	`, id, lowered).Scan(&n)
	return n > 0, err
}

// =============================================================================
// DELETE OPERATIONS
// =============================================================================

// Delete removes a conversation by ID.
func (l *Library) Delete(id string) error {
	res, err := l.db.Exec("DELETE FROM conversations WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConversationNotFound
	}
	return nil
}

// Clear removes all saved conversations.
func (l *Library) Clear() error {
	_, err := l.db.Exec("DELETE FROM conversations")
	return err
}

// =============================================================================
// EXPORT
// =============================================================================

// ExportMarkdown renders the conversation as Markdown with role labels and
// timestamps.
func (c *Conversation) ExportMarkdown() string {
	var sb strings.Builder
	sb.WriteString("# " + c.Title + "\n\n")
	sb.WriteString("Created: " + c.CreatedAt.Format(time.RFC3339) + "\n\n")
	if c.Persona != "" {
		sb.WriteString("Persona: " + c.Persona + "\n\n")
	}
	sb.WriteString("---\n\n")

	for _, msg := range c.Messages {
		sb.WriteString("**" + msg.Sender.DisplayName() + "** (" + msg.Timestamp.Format("15:04") + "):\n\n")
		sb.WriteString(msg.Text)
		sb.WriteString("\n\n---\n\n")
	}
	return sb.String()
}
