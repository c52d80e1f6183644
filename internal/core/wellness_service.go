package core

import (
	"context"
	"fmt"

	"safespace.app/backend/internal/auth"
	"safespace.app/backend/internal/catalog"
	"safespace.app/backend/internal/store"
)

const recentMoodLimit = 7

type WellnessStore interface {
	CreateMoodEntry(ctx context.Context, entry *store.MoodEntry) error
	ListMoodEntries(ctx context.Context, userID string, limit int) ([]store.MoodEntry, error)
	ListExercises(ctx context.Context, authorID string) ([]store.Exercise, error)
}

// Toolkit is the exercise list shown on the wellness page.
type Toolkit struct {
	Builtin  []catalog.Exercise `json:"builtin"`
	Authored []store.Exercise   `json:"authored"`
}

type WellnessService struct {
	store WellnessStore
}

func NewWellnessService(st WellnessStore) *WellnessService {
	return &WellnessService{store: st}
}

func (s *WellnessService) RecordMood(ctx context.Context, sess auth.Session, mood, note string) (*store.MoodEntry, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	if !catalog.IsMood(mood) {
		return nil, invalidf("unknown mood %q", mood)
	}
	entry := &store.MoodEntry{UserID: sess.UserID, Mood: mood, Note: optional(note)}
	if err := s.store.CreateMoodEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to record mood: %w", err)
	}
	return entry, nil
}

func (s *WellnessService) RecentMoods(ctx context.Context, sess auth.Session) ([]store.MoodEntry, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	entries, err := s.store.ListMoodEntries(ctx, sess.UserID, recentMoodLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list moods: %w", err)
	}
	return entries, nil
}

func (s *WellnessService) Exercises(ctx context.Context) (*Toolkit, error) {
	authored, err := s.store.ListExercises(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list exercises: %w", err)
	}
	return &Toolkit{Builtin: catalog.BuiltinExercises, Authored: authored}, nil
}
