package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"safespace.app/backend/internal/auth"
	"safespace.app/backend/internal/store"
)

const anonymousName = "Anonymous User"

type MessagingStore interface {
	GetUserByID(ctx context.Context, id string) (*store.User, error)
	CreateDirectMessage(ctx context.Context, msg *store.DirectMessage) error
	GetDirectMessage(ctx context.Context, id string) (*store.DirectMessage, error)
	ReplyToMessage(ctx context.Context, originalID string, reply *store.DirectMessage) error
	MarkThreadRead(ctx context.Context, userID, otherID string) (int64, error)
	ListThread(ctx context.Context, userID, otherID string) ([]store.DirectMessage, error)
	ListInbox(ctx context.Context, userID string) ([]store.DirectMessage, error)
	ListConversations(ctx context.Context, userID string) ([]store.Conversation, error)
}

// ConversationView is a conversation with the counterpart's display name
// resolved.
type ConversationView struct {
	UserID        string    `json:"user_id"`
	DisplayName   string    `json:"display_name"`
	LastMessage   string    `json:"last_message"`
	LastMessageAt time.Time `json:"last_message_at"`
	UnreadCount   int       `json:"unread_count"`
}

type MessagingService struct {
	store MessagingStore
}

func NewMessagingService(st MessagingStore) *MessagingService {
	return &MessagingService{store: st}
}

func (s *MessagingService) Send(ctx context.Context, sess auth.Session, recipientID, content string) (*store.DirectMessage, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, invalidf("message content is required")
	}
	if recipientID == sess.UserID {
		return nil, invalidf("cannot send a message to yourself")
	}
	if _, err := s.store.GetUserByID(ctx, recipientID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, invalidf("recipient does not exist")
		}
		return nil, fmt.Errorf("failed to look up recipient: %w", err)
	}

	msg := &store.DirectMessage{SenderID: sess.UserID, RecipientID: recipientID, Content: content}
	if err := s.store.CreateDirectMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}
	return msg, nil
}

// Thread returns the messages exchanged with otherID and marks the ones
// received from them as read.
func (s *MessagingService) Thread(ctx context.Context, sess auth.Session, otherID string) ([]store.DirectMessage, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	if _, err := s.store.MarkThreadRead(ctx, sess.UserID, otherID); err != nil {
		return nil, fmt.Errorf("failed to mark thread read: %w", err)
	}
	msgs, err := s.store.ListThread(ctx, sess.UserID, otherID)
	if err != nil {
		return nil, fmt.Errorf("failed to load thread: %w", err)
	}
	return msgs, nil
}

func (s *MessagingService) Conversations(ctx context.Context, sess auth.Session) ([]ConversationView, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	convs, err := s.store.ListConversations(ctx, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}

	views := make([]ConversationView, 0, len(convs))
	for _, c := range convs {
		name := anonymousName
		if c.DisplayName != nil && strings.TrimSpace(*c.DisplayName) != "" {
			name = *c.DisplayName
		}
		views = append(views, ConversationView{
			UserID:        c.UserID,
			DisplayName:   name,
			LastMessage:   c.LastMessage,
			LastMessageAt: c.LastMessageAt,
			UnreadCount:   c.UnreadCount,
		})
	}
	return views, nil
}

// Inbox returns the messages addressed to the user, newest first.
func (s *MessagingService) Inbox(ctx context.Context, sess auth.Session) ([]store.DirectMessage, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	msgs, err := s.store.ListInbox(ctx, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list inbox: %w", err)
	}
	return msgs, nil
}

// Reply answers a message addressed to the user and marks it as read.
func (s *MessagingService) Reply(ctx context.Context, sess auth.Session, messageID, content string) (*store.DirectMessage, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, invalidf("reply content is required")
	}
	original, err := s.store.GetDirectMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if original.RecipientID != sess.UserID {
		return nil, ErrForbidden
	}

	reply := &store.DirectMessage{SenderID: sess.UserID, RecipientID: original.SenderID, Content: content}
	if err := s.store.ReplyToMessage(ctx, original.ID, reply); err != nil {
		return nil, fmt.Errorf("failed to reply: %w", err)
	}
	return reply, nil
}
