package core

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"safespace.app/backend/internal/auth"
	"safespace.app/backend/internal/logger"
	"safespace.app/backend/internal/relay"
	"safespace.app/backend/internal/store"
)

const (
	chatHistoryLimit = 50

	// MaxChatMessageLength caps a chat message in characters.
	MaxChatMessageLength = 4000
	// maxContextBytes bounds the history sent to the relay, well under the
	// relay's request body limit.
	maxContextBytes = 512 << 10
)

// ValidateChatMessage trims content and checks it is non-empty and within
// MaxChatMessageLength.
func ValidateChatMessage(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", invalidf("message content is required")
	}
	if n := utf8.RuneCountInString(content); n > MaxChatMessageLength {
		return "", invalidf("message is %d characters long, the limit is %d", n, MaxChatMessageLength)
	}
	return content, nil
}

// fitContext drops the oldest turns until the content of the rest fits in
// budget bytes.
func fitContext(turns []relay.Turn, budget int) []relay.Turn {
	size := 0
	for _, t := range turns {
		size += len(t.Content)
	}
	for len(turns) > 0 && size > budget {
		size -= len(turns[0].Content)
		turns = turns[1:]
	}
	return turns
}

// Completer streams a reply for the given turns.
type Completer interface {
	Complete(ctx context.Context, mode string, turns []relay.Turn, onDelta func(string)) (string, error)
}

type ChatStore interface {
	ListChatMessages(ctx context.Context, userID string, limit int) ([]store.ChatMessage, error)
	CreateChatExchange(ctx context.Context, userID, userContent, assistantContent string) (store.ChatMessage, store.ChatMessage, error)
	DeleteChatMessagesByUser(ctx context.Context, userID string) (int64, error)
}

type ChatService struct {
	store  ChatStore
	relay  Completer
	logger *logger.Logger
}

func NewChatService(st ChatStore, rc Completer, log *logger.Logger) *ChatService {
	return &ChatService{store: st, relay: rc, logger: log}
}

// History returns the user's most recent chat messages, oldest first.
func (s *ChatService) History(ctx context.Context, sess auth.Session) ([]store.ChatMessage, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	msgs, err := s.store.ListChatMessages(ctx, sess.UserID, chatHistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load chat history: %w", err)
	}
	return msgs, nil
}

// Open loads the user's history into a new timeline.
func (s *ChatService) Open(ctx context.Context, sess auth.Session) (*Timeline, error) {
	msgs, err := s.History(ctx, sess)
	if err != nil {
		return nil, err
	}
	return NewTimeline(msgs), nil
}

// Send adds the user's message to tl, streams the assistant reply into it and
// stores both once the stream ends. onUpdate, when set, receives the
// assistant entry after every fragment. On any failure the pending entries
// are removed and nothing is stored.
func (s *ChatService) Send(ctx context.Context, sess auth.Session, tl *Timeline, content string, onUpdate func(Entry)) (store.ChatMessage, store.ChatMessage, error) {
	var zero store.ChatMessage
	if err := requireSession(sess); err != nil {
		return zero, zero, err
	}
	content, err := ValidateChatMessage(content)
	if err != nil {
		return zero, zero, err
	}

	turns := append(fitContext(tl.Turns(), maxContextBytes-len(content)), relay.Turn{Role: store.ChatRoleUser, Content: content})
	userEntry := tl.appendPending(store.ChatRoleUser, content)

	var assistantID string
	var text strings.Builder
	reply, err := s.relay.Complete(ctx, relay.ModeChat, turns, func(delta string) {
		if assistantID == "" {
			assistantID = tl.appendPending(store.ChatRoleAssistant, "").LocalID
		}
		text.WriteString(delta)
		if e, ok := tl.setContent(assistantID, text.String()); ok && onUpdate != nil {
			onUpdate(e)
		}
	})
	if err != nil {
		tl.remove(userEntry.LocalID)
		if assistantID != "" {
			tl.remove(assistantID)
		}
		s.logger.Warn("chat reply failed", "user_id", sess.UserID, "error", err)
		return zero, zero, fmt.Errorf("failed to get chat reply: %w", err)
	}
	if assistantID == "" {
		assistantID = tl.appendPending(store.ChatRoleAssistant, "").LocalID
	}

	userRow, assistantRow, err := s.store.CreateChatExchange(ctx, sess.UserID, content, reply)
	if err != nil {
		tl.remove(userEntry.LocalID)
		tl.remove(assistantID)
		return zero, zero, fmt.Errorf("failed to store chat exchange: %w", err)
	}
	tl.confirm(userEntry.LocalID, userRow)
	tl.confirm(assistantID, assistantRow)
	return userRow, assistantRow, nil
}

// Clear deletes every chat message of the session's user.
func (s *ChatService) Clear(ctx context.Context, sess auth.Session) (int64, error) {
	if err := requireSession(sess); err != nil {
		return 0, err
	}
	n, err := s.store.DeleteChatMessagesByUser(ctx, sess.UserID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear chat history: %w", err)
	}
	s.logger.Info("chat history cleared", "user_id", sess.UserID, "deleted", n)
	return n, nil
}
