package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ListChatMessages returns the user's newest limit messages, oldest first.
func (s *SQLiteStore) ListChatMessages(ctx context.Context, userID string, limit int) ([]ChatMessage, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, role, content, created_at FROM (
		    SELECT rowid AS seq, id, user_id, role, content, created_at FROM chat_messages
		    WHERE user_id = ? ORDER BY created_at DESC, rowid DESC LIMIT ?
		) ORDER BY created_at ASC, seq ASC`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query chat messages: %w", err)
	}
	defer rows.Close()

	messages := []ChatMessage{}
	for rows.Next() {
		var msg ChatMessage
		if err := rows.Scan(&msg.ID, &msg.UserID, &msg.Role, &msg.Content, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat message row: %w", err)
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// CreateChatExchange stores a user turn and the assistant reply atomically.
// The assistant row is stamped after the user row so the pair keeps its order.
func (s *SQLiteStore) CreateChatExchange(ctx context.Context, userID, userContent, assistantContent string) (ChatMessage, ChatMessage, error) {
	t := now()
	userMsg := ChatMessage{ID: uuid.NewString(), UserID: userID, Role: ChatRoleUser, Content: userContent, CreatedAt: t}
	assistantMsg := ChatMessage{ID: uuid.NewString(), UserID: userID, Role: ChatRoleAssistant, Content: assistantContent, CreatedAt: t.Add(time.Microsecond)}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, "INSERT INTO chat_messages (id, user_id, role, content, created_at) VALUES (?, ?, ?, ?, ?)")
		if err != nil {
			return fmt.Errorf("failed to prepare chat message insert: %w", err)
		}
		defer stmt.Close()

		for _, m := range []ChatMessage{userMsg, assistantMsg} {
			if _, err := stmt.ExecContext(ctx, m.ID, m.UserID, m.Role, m.Content, m.CreatedAt); err != nil {
				return fmt.Errorf("failed to execute chat message insert: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return ChatMessage{}, ChatMessage{}, err
	}
	return userMsg, assistantMsg, nil
}

// DeleteChatMessagesByUser removes every chat message of the user and
// returns how many were deleted.
func (s *SQLiteStore) DeleteChatMessagesByUser(ctx context.Context, userID string) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM chat_messages WHERE user_id = ?", userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete chat messages: %w", err)
	}
	affected, _ := res.RowsAffected()
	return affected, nil
}
