package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"safespace.app/backend/internal/store"
)

func TestMessaging_SendValidation(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	_, a := newUser(t, st, "a@example.com")
	_, b := newUser(t, st, "b@example.com")
	svc := NewMessagingService(st)

	_, err := svc.Send(ctx, a, b.UserID, "  ")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.Send(ctx, a, a.UserID, "hi me")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.Send(ctx, a, "ghost", "hi")
	assert.ErrorIs(t, err, ErrValidation)

	msg, err := svc.Send(ctx, a, b.UserID, " hello ")
	require.NoError(t, err)
	assert.Equal(t, "hello", msg.Content)
	assert.False(t, msg.IsRead)
}

func TestMessaging_ThreadConversationsReply(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	_, pro := newProfessional(t, st, "pro@example.com", store.StatusVerified)
	_, youth := newUser(t, st, "youth@example.com")
	svc := NewMessagingService(st)

	first, err := svc.Send(ctx, youth, pro.UserID, "Can we talk?")
	require.NoError(t, err)
	_, err = svc.Send(ctx, youth, pro.UserID, "It's about school.")
	require.NoError(t, err)

	convs, err := svc.Conversations(ctx, pro)
	require.NoError(t, err)
	require.Len(t, convs, 1)
	assert.Equal(t, youth.UserID, convs[0].UserID)
	assert.Equal(t, "Anonymous User", convs[0].DisplayName)
	assert.Equal(t, "It's about school.", convs[0].LastMessage)
	assert.Equal(t, 2, convs[0].UnreadCount)

	// the youth's side shows the professional's display name
	youthConvs, err := svc.Conversations(ctx, youth)
	require.NoError(t, err)
	require.Len(t, youthConvs, 1)
	assert.Equal(t, "Dr. pro@example.com", youthConvs[0].DisplayName)
	assert.Equal(t, 0, youthConvs[0].UnreadCount)

	thread, err := svc.Thread(ctx, pro, youth.UserID)
	require.NoError(t, err)
	require.Len(t, thread, 2)
	assert.Equal(t, "Can we talk?", thread[0].Content)
	assert.True(t, thread[0].IsRead)
	assert.True(t, thread[1].IsRead)

	_, err = svc.Reply(ctx, youth, first.ID, "answering myself")
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.Reply(ctx, pro, "missing", "hi")
	assert.ErrorIs(t, err, store.ErrNotFound)

	reply, err := svc.Reply(ctx, pro, first.ID, "Of course.")
	require.NoError(t, err)
	assert.Equal(t, youth.UserID, reply.RecipientID)

	inbox, err := svc.Inbox(ctx, youth)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, "Of course.", inbox[0].Content)

	youthConvs, err = svc.Conversations(ctx, youth)
	require.NoError(t, err)
	assert.Equal(t, 1, youthConvs[0].UnreadCount)
}
