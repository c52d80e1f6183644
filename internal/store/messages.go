package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

const directMessageColumns = "id, sender_id, recipient_id, content, is_read, created_at"

func (s *SQLiteStore) CreateDirectMessage(ctx context.Context, msg *DirectMessage) error {
	msg.ID = uuid.NewString()
	msg.CreatedAt = now()
	msg.IsRead = false
	_, err := s.db.ExecContext(ctx, "INSERT INTO direct_messages ("+directMessageColumns+") VALUES (?, ?, ?, ?, ?, ?)",
		msg.ID, msg.SenderID, msg.RecipientID, msg.Content, msg.IsRead, msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert direct message: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetDirectMessage(ctx context.Context, id string) (*DirectMessage, error) {
	var m DirectMessage
	err := s.db.QueryRowContext(ctx, "SELECT "+directMessageColumns+" FROM direct_messages WHERE id = ?", id).
		Scan(&m.ID, &m.SenderID, &m.RecipientID, &m.Content, &m.IsRead, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query direct message: %w", err)
	}
	return &m, nil
}

// ReplyToMessage inserts reply and marks original as read in one transaction.
func (s *SQLiteStore) ReplyToMessage(ctx context.Context, originalID string, reply *DirectMessage) error {
	reply.ID = uuid.NewString()
	reply.CreatedAt = now()
	reply.IsRead = false
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, "INSERT INTO direct_messages ("+directMessageColumns+") VALUES (?, ?, ?, ?, ?, ?)",
			reply.ID, reply.SenderID, reply.RecipientID, reply.Content, reply.IsRead, reply.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert reply: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "UPDATE direct_messages SET is_read = TRUE WHERE id = ?", originalID); err != nil {
			return fmt.Errorf("failed to mark message read: %w", err)
		}
		return nil
	})
}

// MarkThreadRead marks every message from otherID to userID as read.
func (s *SQLiteStore) MarkThreadRead(ctx context.Context, userID, otherID string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE direct_messages SET is_read = TRUE WHERE sender_id = ? AND recipient_id = ? AND is_read = FALSE",
		otherID, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark thread read: %w", err)
	}
	affected, _ := res.RowsAffected()
	return affected, nil
}

// ListThread returns the messages between two users in both directions,
// oldest first.
func (s *SQLiteStore) ListThread(ctx context.Context, userID, otherID string) ([]DirectMessage, error) {
	return s.listDirectMessages(ctx,
		"SELECT "+directMessageColumns+" FROM direct_messages WHERE (sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?) ORDER BY created_at ASC, rowid ASC",
		userID, otherID, otherID, userID)
}

// ListInbox returns messages addressed to userID, newest first.
func (s *SQLiteStore) ListInbox(ctx context.Context, userID string) ([]DirectMessage, error) {
	return s.listDirectMessages(ctx,
		"SELECT "+directMessageColumns+" FROM direct_messages WHERE recipient_id = ? ORDER BY created_at DESC, rowid DESC",
		userID)
}

func (s *SQLiteStore) listDirectMessages(ctx context.Context, query string, args ...any) ([]DirectMessage, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query direct messages: %w", err)
	}
	defer rows.Close()

	messages := []DirectMessage{}
	for rows.Next() {
		var m DirectMessage
		if err := rows.Scan(&m.ID, &m.SenderID, &m.RecipientID, &m.Content, &m.IsRead, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan direct message row: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// ListConversations groups the messages of userID by counterpart. The most
// recent conversation comes first.
func (s *SQLiteStore) ListConversations(ctx context.Context, userID string) ([]Conversation, error) {
	query := `
        SELECT dm.sender_id, dm.recipient_id, dm.content, dm.is_read, dm.created_at, p.display_name
        FROM direct_messages dm
        LEFT JOIN profiles p
            ON p.user_id = CASE WHEN dm.sender_id = ? THEN dm.recipient_id ELSE dm.sender_id END
        WHERE dm.sender_id = ? OR dm.recipient_id = ?
        ORDER BY dm.created_at DESC, dm.rowid DESC
    `
	rows, err := s.db.QueryContext(ctx, query, userID, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversations: %w", err)
	}
	defer rows.Close()

	conversations := []Conversation{}
	index := map[string]int{}
	for rows.Next() {
		var m DirectMessage
		var displayName sql.NullString
		if err := rows.Scan(&m.SenderID, &m.RecipientID, &m.Content, &m.IsRead, &m.CreatedAt, &displayName); err != nil {
			return nil, fmt.Errorf("failed to scan conversation row: %w", err)
		}
		other := m.SenderID
		if other == userID {
			other = m.RecipientID
		}

		i, seen := index[other]
		if !seen {
			conversations = append(conversations, Conversation{
				UserID:        other,
				DisplayName:   nullString(displayName),
				LastMessage:   m.Content,
				LastMessageAt: m.CreatedAt,
			})
			i = len(conversations) - 1
			index[other] = i
		}
		if m.RecipientID == userID && !m.IsRead {
			conversations[i].UnreadCount++
		}
	}
	return conversations, rows.Err()
}
