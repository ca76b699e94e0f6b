// ABOUTME: Chat conversation and message persistence for the SQLite store
// ABOUTME: Conversations are keyed by an opaque chat session ID, distinct from auth sessions

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// GetOrCreateConversation resolves the conversation for a chat session ID,
// creating it if absent. Handles the concurrent-create race via the UNIQUE
// constraint on session_id.
func (s *SQLiteStore) GetOrCreateConversation(ctx context.Context, sessionID string) (*Conversation, error) {
	conv, err := s.getConversation(ctx, sessionID)
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	now := formatTime(time.Now())
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO chat_conversations (session_id, created_at, updated_at)
		VALUES (?, ?, ?)
	`, sessionID, now, now)
	if err != nil {
		if isConstraintViolation(err) {
			// Another request created it between our lookup and insert
			return s.getConversation(ctx, sessionID)
		}
		return nil, fmt.Errorf("inserting conversation: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting conversation id: %w", err)
	}

	s.logger.Debug("created conversation", "id", id, "session_id", sessionID)
	return s.getConversationByID(ctx, id)
}

func (s *SQLiteStore) getConversation(ctx context.Context, sessionID string) (*Conversation, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, session_id, created_at, updated_at
		FROM chat_conversations
		WHERE session_id = ?
	`, sessionID)
	return scanConversation(row)
}

func (s *SQLiteStore) getConversationByID(ctx context.Context, id int64) (*Conversation, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, session_id, created_at, updated_at
		FROM chat_conversations
		WHERE id = ?
	`, id)
	return scanConversation(row)
}

func scanConversation(row *sql.Row) (*Conversation, error) {
	var conv Conversation
	var createdAtStr, updatedAtStr string

	err := row.Scan(&conv.ID, &conv.SessionID, &createdAtStr, &updatedAtStr)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning conversation: %w", err)
	}

	conv.CreatedAt, err = parseTime(createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	conv.UpdatedAt, err = parseTime(updatedAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}

	return &conv, nil
}

// RecentChatMessages retrieves the most recent `limit` messages of a
// conversation, returned in chronological order (oldest first).
func (s *SQLiteStore) RecentChatMessages(ctx context.Context, conversationID int64, limit int) ([]*ChatMessage, error) {
	// Take the N most recent rows, then flip back to chronological order
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, conversation_id, role, content, created_at
		FROM (
			SELECT id, conversation_id, role, content, created_at
			FROM chat_messages
			WHERE conversation_id = ?
			ORDER BY created_at DESC, id DESC
			LIMIT ?
		)
		ORDER BY created_at ASC, id ASC
	`, conversationID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying chat messages: %w", err)
	}
	defer rows.Close()

	var messages []*ChatMessage
	for rows.Next() {
		var msg ChatMessage
		var createdAtStr string

		if err := rows.Scan(&msg.ID, &msg.ConversationID, &msg.Role, &msg.Content, &createdAtStr); err != nil {
			return nil, fmt.Errorf("scanning chat message row: %w", err)
		}

		msg.CreatedAt, err = parseTime(createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("parsing message created_at: %w", err)
		}

		messages = append(messages, &msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chat message rows: %w", err)
	}

	return messages, nil
}

// SaveChatMessage appends a message to a conversation.
func (s *SQLiteStore) SaveChatMessage(ctx context.Context, msg *ChatMessage) error {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO chat_messages (conversation_id, role, content, created_at)
		VALUES (?, ?, ?, ?)
	`, msg.ConversationID, msg.Role, msg.Content, formatTime(msg.CreatedAt))
	if err != nil {
		return fmt.Errorf("inserting chat message: %w", err)
	}

	msg.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting message id: %w", err)
	}

	s.logger.Debug("saved chat message", "conversation_id", msg.ConversationID, "role", msg.Role)
	return nil
}

// TouchConversation bumps a conversation's updated timestamp.
func (s *SQLiteStore) TouchConversation(ctx context.Context, conversationID int64) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE chat_conversations SET updated_at = ? WHERE id = ?
	`, formatTime(time.Now()), conversationID)
	if err != nil {
		return fmt.Errorf("touching conversation: %w", err)
	}
	return nil
}
