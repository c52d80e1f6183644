package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

func (s *SQLiteStore) CreateMoodEntry(ctx context.Context, entry *MoodEntry) error {
	entry.ID = uuid.NewString()
	entry.CreatedAt = now()
	_, err := s.db.ExecContext(ctx, "INSERT INTO mood_entries (id, user_id, mood, note, created_at) VALUES (?, ?, ?, ?, ?)",
		entry.ID, entry.UserID, entry.Mood, entry.Note, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert mood entry: %w", err)
	}
	return nil
}

// ListMoodEntries returns up to limit entries of the user, newest first.
func (s *SQLiteStore) ListMoodEntries(ctx context.Context, userID string, limit int) ([]MoodEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, user_id, mood, note, created_at FROM mood_entries WHERE user_id = ? ORDER BY created_at DESC, rowid DESC LIMIT ?",
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query mood entries: %w", err)
	}
	defer rows.Close()

	entries := []MoodEntry{}
	for rows.Next() {
		var e MoodEntry
		var note sql.NullString
		if err := rows.Scan(&e.ID, &e.UserID, &e.Mood, &note, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan mood row: %w", err)
		}
		e.Note = nullString(note)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
