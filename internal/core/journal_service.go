package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"safespace.app/backend/internal/auth"
	"safespace.app/backend/internal/logger"
	"safespace.app/backend/internal/relay"
	"safespace.app/backend/internal/store"
)

const journalListLimit = 20

type JournalStore interface {
	CreateJournalEntry(ctx context.Context, entry *store.JournalEntry) error
	ListJournalEntries(ctx context.Context, userID string, limit int) ([]store.JournalEntry, error)
	DeleteJournalEntry(ctx context.Context, id, userID string) error
}

type JournalService struct {
	store  JournalStore
	relay  Completer
	logger *logger.Logger
}

func NewJournalService(st JournalStore, rc Completer, log *logger.Logger) *JournalService {
	return &JournalService{store: st, relay: rc, logger: log}
}

// Reflect asks for a reflection on the entry and saves the entry with it.
// A refused relay call still saves the entry, without a reflection.
func (s *JournalService) Reflect(ctx context.Context, sess auth.Session, content string, tags []string, anonymous bool) (*store.JournalEntry, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, invalidf("journal content is required")
	}

	entry := &store.JournalEntry{
		UserID:      sess.UserID,
		Content:     content,
		EmotionTags: dedupeTags(tags),
		IsAnonymous: anonymous,
	}

	reply, err := s.relay.Complete(ctx, relay.ModeReflect, []relay.Turn{{Role: "user", Content: content}}, nil)
	switch {
	case err == nil:
		if reply != "" {
			entry.AIResponse = &reply
		}
	case relay.Refused(err):
		s.logger.Warn("reflection refused, saving entry without it", "user_id", sess.UserID, "error", err)
	default:
		return nil, fmt.Errorf("failed to get reflection: %w", err)
	}

	if err := s.store.CreateJournalEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to save journal entry: %w", err)
	}
	return entry, nil
}

// List returns the newest entries of the user.
func (s *JournalService) List(ctx context.Context, sess auth.Session) ([]store.JournalEntry, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	entries, err := s.store.ListJournalEntries(ctx, sess.UserID, journalListLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list journal entries: %w", err)
	}
	return entries, nil
}

func (s *JournalService) Delete(ctx context.Context, sess auth.Session, id string) error {
	if err := requireSession(sess); err != nil {
		return err
	}
	if err := s.store.DeleteJournalEntry(ctx, id, sess.UserID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete journal entry: %w", err)
	}
	return nil
}

// dedupeTags trims and lowercases tags, dropping blanks and repeats while
// keeping the first occurrence order.
func dedupeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
