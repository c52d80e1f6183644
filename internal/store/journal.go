package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

func (s *SQLiteStore) CreateJournalEntry(ctx context.Context, entry *JournalEntry) error {
	entry.ID = uuid.NewString()
	entry.CreatedAt = now()
	if entry.EmotionTags == nil {
		entry.EmotionTags = []string{}
	}
	tags, err := encodeList(entry.EmotionTags)
	if err != nil {
		return err
	}

	stmt, err := s.db.PrepareContext(ctx, "INSERT INTO journal_entries (id, user_id, content, emotion_tags, ai_response, is_anonymous, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare journal insert: %w", err)
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx, entry.ID, entry.UserID, entry.Content, tags, entry.AIResponse, entry.IsAnonymous, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to execute journal insert: %w", err)
	}
	return nil
}

// ListJournalEntries returns up to limit entries of the user, newest first.
func (s *SQLiteStore) ListJournalEntries(ctx context.Context, userID string, limit int) ([]JournalEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, user_id, content, emotion_tags, ai_response, is_anonymous, created_at FROM journal_entries WHERE user_id = ? ORDER BY created_at DESC, rowid DESC LIMIT ?",
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal entries: %w", err)
	}
	defer rows.Close()

	entries := []JournalEntry{}
	for rows.Next() {
		var e JournalEntry
		var tags string
		var aiResponse sql.NullString
		if err := rows.Scan(&e.ID, &e.UserID, &e.Content, &tags, &aiResponse, &e.IsAnonymous, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan journal row: %w", err)
		}
		if e.EmotionTags, err = decodeList(tags); err != nil {
			return nil, err
		}
		e.AIResponse = nullString(aiResponse)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// DeleteJournalEntry deletes an entry owned by userID.
func (s *SQLiteStore) DeleteJournalEntry(ctx context.Context, id, userID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM journal_entries WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete journal entry: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}
