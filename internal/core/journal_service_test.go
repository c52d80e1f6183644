package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"safespace.app/backend/internal/logger"
	"safespace.app/backend/internal/relay"
	"safespace.app/backend/internal/store"
)

func TestReflect_SavesReply(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	_, sess := newUser(t, st, "a@example.com")
	rc := &fakeCompleter{fragments: []string{"It sounds ", "like a lot."}}
	svc := NewJournalService(st, rc, logger.Nop())

	entry, err := svc.Reflect(ctx, sess, "  Exams are stressing me out ", []string{"Worried", "worried", " overwhelmed", ""}, true)
	require.NoError(t, err)
	assert.Equal(t, relay.ModeReflect, rc.lastMode)
	assert.Equal(t, []relay.Turn{{Role: "user", Content: "Exams are stressing me out"}}, rc.lastTurns)
	require.NotNil(t, entry.AIResponse)
	assert.Equal(t, "It sounds like a lot.", *entry.AIResponse)
	assert.Equal(t, []string{"worried", "overwhelmed"}, entry.EmotionTags)
	assert.True(t, entry.IsAnonymous)

	entries, err := svc.List(ctx, sess)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entry.ID, entries[0].ID)
}

func TestReflect_EmptyReplyStoredAsNull(t *testing.T) {
	st := newStore(t)
	_, sess := newUser(t, st, "a@example.com")
	svc := NewJournalService(st, &fakeCompleter{}, logger.Nop())

	entry, err := svc.Reflect(context.Background(), sess, "today was fine", nil, false)
	require.NoError(t, err)
	assert.Nil(t, entry.AIResponse)
	assert.Equal(t, []string{}, entry.EmotionTags)
}

func TestReflect_RefusedStillSaves(t *testing.T) {
	refusals := []error{relay.ErrRateLimited, relay.ErrUnavailable, &relay.StatusError{Status: 500, Message: "AI service error"}}
	for _, refusal := range refusals {
		st := newStore(t)
		_, sess := newUser(t, st, "a@example.com")
		svc := NewJournalService(st, &fakeCompleter{err: refusal}, logger.Nop())

		entry, err := svc.Reflect(context.Background(), sess, "hard day", nil, false)
		require.NoError(t, err, "refusal %v", refusal)
		assert.Nil(t, entry.AIResponse)

		entries, err := svc.List(context.Background(), sess)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	}
}

func TestReflect_TransportFailureAborts(t *testing.T) {
	st := newStore(t)
	_, sess := newUser(t, st, "a@example.com")
	boom := errors.New("relay request failed: connection refused")
	svc := NewJournalService(st, &fakeCompleter{fragments: []string{"partial"}, err: boom}, logger.Nop())

	_, err := svc.Reflect(context.Background(), sess, "hard day", nil, false)
	assert.ErrorIs(t, err, boom)

	entries, err := svc.List(context.Background(), sess)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestReflect_Validation(t *testing.T) {
	st := newStore(t)
	_, sess := newUser(t, st, "a@example.com")
	rc := &fakeCompleter{}
	svc := NewJournalService(st, rc, logger.Nop())

	_, err := svc.Reflect(context.Background(), sess, " \n ", nil, false)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Zero(t, rc.calls)
}

func TestJournalDelete_OwnerOnly(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	_, owner := newUser(t, st, "a@example.com")
	_, other := newUser(t, st, "b@example.com")
	svc := NewJournalService(st, &fakeCompleter{}, logger.Nop())

	entry, err := svc.Reflect(ctx, owner, "note", nil, false)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, other, entry.ID), store.ErrNotFound)
	require.NoError(t, svc.Delete(ctx, owner, entry.ID))
	entries, err := svc.List(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
