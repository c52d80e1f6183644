package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"safespace.app/backend/internal/auth"
	"safespace.app/backend/internal/catalog"
	"safespace.app/backend/internal/store"
)

func TestContent_Scenes(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	svc := NewContentService(st)

	scene, err := svc.Scene(ctx, "1", catalog.StartScene)
	require.NoError(t, err)
	require.Len(t, scene.Choices, 2)

	next, err := svc.Scene(ctx, "1", scene.Choices[1].NextSceneID)
	require.NoError(t, err)
	assert.Equal(t, "honest", next.ID)

	_, err = svc.Scene(ctx, "1", "nowhere")
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = svc.Scene(ctx, "missing", catalog.StartScene)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestContent_AuthoredStories(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	_, pro := newProfessional(t, st, "p@example.com", store.StatusVerified)
	_, other := newProfessional(t, st, "o@example.com", store.StatusVerified)
	svc := NewContentService(st)

	story, err := svc.CreateStory(ctx, pro, StoryInput{Title: "Exam night", Description: "A story"})
	require.NoError(t, err)
	assert.Equal(t, "Mental Health", story.Category)
	assert.Equal(t, catalog.DefaultStoryContent(), story.Content)
	assert.True(t, story.IsProfessionalContent)

	end, err := svc.Scene(ctx, story.ID, "end")
	require.NoError(t, err)
	assert.True(t, end.IsEnding)

	lib, err := svc.Stories(ctx)
	require.NoError(t, err)
	assert.Len(t, lib.Builtin, 5)
	require.Len(t, lib.Authored, 1)

	broken := &catalog.StoryContent{Scenes: []catalog.Scene{{ID: "start", Choices: []catalog.Choice{{Text: "go", NextSceneID: "gone"}}}}}
	_, err = svc.CreateStory(ctx, pro, StoryInput{Title: "t", Description: "d", Content: broken})
	assert.ErrorIs(t, err, ErrValidation)

	assert.ErrorIs(t, svc.DeleteStory(ctx, other, story.ID), store.ErrNotFound)
	require.NoError(t, svc.DeleteStory(ctx, pro, story.ID))
}

func TestContent_RequiresVerifiedProfessional(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	_, user := newUser(t, st, "u@example.com")
	_, pending := newProfessional(t, st, "p@example.com", store.StatusPending)
	svc := NewContentService(st)

	for name, sess := range map[string]auth.Session{"user": user, "pending": pending} {
		_, err := svc.CreateStory(ctx, sess, StoryInput{Title: "t", Description: "d"})
		assert.ErrorIs(t, err, ErrNotProfessional, name)
		_, err = svc.CreateExercise(ctx, sess, ExerciseInput{Title: "t", Category: "breathing"})
		assert.ErrorIs(t, err, ErrNotProfessional, name)
		_, err = svc.CreateArticle(ctx, sess, ArticleInput{Title: "t", Content: "c"})
		assert.ErrorIs(t, err, ErrNotProfessional, name)
	}
}

func TestContent_ExercisesAndArticles(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	_, pro := newProfessional(t, st, "p@example.com", store.StatusVerified)
	svc := NewContentService(st)

	_, err := svc.CreateExercise(ctx, pro, ExerciseInput{Title: "Yoga", Category: "yoga"})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.CreateExercise(ctx, pro, ExerciseInput{Title: " ", Category: "breathing"})
	assert.ErrorIs(t, err, ErrValidation)

	ex, err := svc.CreateExercise(ctx, pro, ExerciseInput{Title: "Slow breaths", Category: "breathing"})
	require.NoError(t, err)
	assert.Equal(t, catalog.DefaultExerciseIcon, ex.Icon)

	art, err := svc.CreateArticle(ctx, pro, ArticleInput{Title: "Sleep", Content: "Keep a **routine**.", Emoji: "😴"})
	require.NoError(t, err)

	page, err := svc.Learn(ctx)
	require.NoError(t, err)
	assert.Len(t, page.Cards, 6)
	require.Len(t, page.Articles, 1)
	assert.Equal(t, art.ID, page.Articles[0].ID)
	assert.Contains(t, page.Articles[0].ContentHTML, "<strong>routine</strong>")

	rss, err := svc.ArticleFeed(ctx, "https://safespace.example/")
	require.NoError(t, err)
	assert.Contains(t, rss, "<rss")
	assert.Contains(t, rss, "😴 Sleep")
	assert.Contains(t, rss, "https://safespace.example/learn#"+art.ID)

	require.NoError(t, svc.DeleteExercise(ctx, pro, ex.ID))
	assert.ErrorIs(t, svc.DeleteExercise(ctx, pro, ex.ID), store.ErrNotFound)
	require.NoError(t, svc.DeleteArticle(ctx, pro, art.ID))
}
