package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"safespace.app/backend/internal/catalog"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestUser(t *testing.T, s *SQLiteStore, email string) *User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), email, "hash", nil)
	require.NoError(t, err)
	return u
}

func strPtr(v string) *string { return &v }

func TestWithPragmas(t *testing.T) {
	assert.Equal(t, "a.db?_foreign_keys=on&_busy_timeout=5000", withPragmas("a.db"))
	assert.Equal(t, "a.db?mode=rwc&_foreign_keys=on&_busy_timeout=5000", withPragmas("a.db?mode=rwc"))
	assert.Equal(t, "a.db?_foreign_keys=off", withPragmas("a.db?_foreign_keys=off"))
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	u, err := s.CreateUser(ctx, "  Alex@Example.com ", "hash", strPtr("Alex"))
	require.NoError(t, err)
	assert.Equal(t, "alex@example.com", u.Email)

	_, err = s.CreateUser(ctx, "alex@example.com", "other", nil)
	assert.ErrorIs(t, err, ErrDuplicate)

	got, err := s.GetUserByEmail(ctx, "ALEX@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "hash", got.PasswordHash)

	_, err = s.GetUserByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	profile, err := s.GetProfile(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, profile.DisplayName)
	assert.Equal(t, "Alex", *profile.DisplayName)

	roles, err := s.GetRoles(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{RoleUser}, roles)

	require.NoError(t, s.GrantRole(ctx, u.ID, RoleAdmin))
	require.NoError(t, s.GrantRole(ctx, u.ID, RoleAdmin))
	roles, err = s.GetRoles(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{RoleAdmin, RoleUser}, roles)

	ok, err := s.HasRole(ctx, u.ID, RoleProfessional)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRevokedTokens(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	revoked, err := s.IsTokenRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, s.RevokeToken(ctx, "jti-1", time.Now().Add(time.Hour)))
	require.NoError(t, s.RevokeToken(ctx, "jti-1", time.Now().Add(time.Hour)))
	revoked, err = s.IsTokenRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	// an expired entry is purged by the next revocation
	require.NoError(t, s.RevokeToken(ctx, "old", time.Now().Add(-time.Hour)))
	require.NoError(t, s.RevokeToken(ctx, "jti-2", time.Now().Add(time.Hour)))
	revoked, err = s.IsTokenRevoked(ctx, "old")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestChatMessages(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	alice := newTestUser(t, s, "alice@example.com")
	bob := newTestUser(t, s, "bob@example.com")

	u1, a1, err := s.CreateChatExchange(ctx, alice.ID, "I feel anxious", "I hear you.")
	require.NoError(t, err)
	assert.Equal(t, ChatRoleUser, u1.Role)
	assert.Equal(t, ChatRoleAssistant, a1.Role)
	_, _, err = s.CreateChatExchange(ctx, alice.ID, "thanks", "")
	require.NoError(t, err)
	_, _, err = s.CreateChatExchange(ctx, bob.ID, "hi", "hello")
	require.NoError(t, err)

	msgs, err := s.ListChatMessages(ctx, alice.ID, 50)
	require.NoError(t, err)
	require.Len(t, msgs, 4)
	assert.Equal(t, []string{"I feel anxious", "I hear you.", "thanks", ""},
		[]string{msgs[0].Content, msgs[1].Content, msgs[2].Content, msgs[3].Content})

	limited, err := s.ListChatMessages(ctx, alice.ID, 3)
	require.NoError(t, err)
	require.Len(t, limited, 3)
	assert.Equal(t, []string{"I hear you.", "thanks", ""},
		[]string{limited[0].Content, limited[1].Content, limited[2].Content})

	n, err := s.DeleteChatMessagesByUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 4, n)

	msgs, err = s.ListChatMessages(ctx, alice.ID, 50)
	require.NoError(t, err)
	assert.Empty(t, msgs)

	msgs, err = s.ListChatMessages(ctx, bob.ID, 50)
	require.NoError(t, err)
	assert.Len(t, msgs, 2)
}

func TestChatMessages_KeepsNewestWindow(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	alice := newTestUser(t, s, "alice@example.com")

	for i := 0; i < 30; i++ {
		_, _, err := s.CreateChatExchange(ctx, alice.ID, fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i))
		require.NoError(t, err)
	}

	msgs, err := s.ListChatMessages(ctx, alice.ID, 50)
	require.NoError(t, err)
	require.Len(t, msgs, 50)
	assert.Equal(t, "q5", msgs[0].Content)
	assert.Equal(t, "a5", msgs[1].Content)
	assert.Equal(t, "a29", msgs[49].Content)
	for i := 1; i < len(msgs); i++ {
		assert.False(t, msgs[i].CreatedAt.Before(msgs[i-1].CreatedAt), "index %d", i)
	}
}

func TestChatExchange_RollsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	// unknown user violates the foreign key, so neither row may remain
	_, _, err := s.CreateChatExchange(ctx, "ghost", "hello", "hi")
	require.Error(t, err)

	var n int
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM chat_messages").Scan(&n))
	assert.Zero(t, n)
}

func TestJournalEntries(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	alice := newTestUser(t, s, "alice@example.com")
	bob := newTestUser(t, s, "bob@example.com")

	for i := 0; i < 22; i++ {
		e := &JournalEntry{UserID: alice.ID, Content: "entry", EmotionTags: []string{"hopeful"}}
		require.NoError(t, s.CreateJournalEntry(ctx, e))
	}
	last := &JournalEntry{UserID: alice.ID, Content: "latest", AIResponse: strPtr("That sounds hard.")}
	require.NoError(t, s.CreateJournalEntry(ctx, last))

	entries, err := s.ListJournalEntries(ctx, alice.ID, 20)
	require.NoError(t, err)
	require.Len(t, entries, 20)
	assert.Equal(t, "latest", entries[0].Content)
	require.NotNil(t, entries[0].AIResponse)
	assert.Equal(t, "That sounds hard.", *entries[0].AIResponse)
	assert.Equal(t, []string{}, entries[0].EmotionTags)
	assert.Nil(t, entries[1].AIResponse)
	assert.Equal(t, []string{"hopeful"}, entries[1].EmotionTags)

	assert.ErrorIs(t, s.DeleteJournalEntry(ctx, last.ID, bob.ID), ErrNotFound)
	require.NoError(t, s.DeleteJournalEntry(ctx, last.ID, alice.ID))
	assert.ErrorIs(t, s.DeleteJournalEntry(ctx, last.ID, alice.ID), ErrNotFound)
}

func TestMoodEntries(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	alice := newTestUser(t, s, "alice@example.com")

	for _, mood := range []string{"happy", "sad", "calm"} {
		require.NoError(t, s.CreateMoodEntry(ctx, &MoodEntry{UserID: alice.ID, Mood: mood}))
	}
	entries, err := s.ListMoodEntries(ctx, alice.ID, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "calm", entries[0].Mood)
	assert.Equal(t, "sad", entries[1].Mood)
}

func TestForum(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	alice := newTestUser(t, s, "alice@example.com")
	bob := newTestUser(t, s, "bob@example.com")

	post := &Post{UserID: alice.ID, Content: "exams soon", Topic: "academics"}
	require.NoError(t, s.CreatePost(ctx, post))
	other := &Post{UserID: bob.ID, Content: "lonely", Topic: "loneliness"}
	require.NoError(t, s.CreatePost(ctx, other))

	liked, count, err := s.ToggleLike(ctx, post.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, 1, count)

	liked, count, err = s.ToggleLike(ctx, post.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, 2, count)

	liked, count, err = s.ToggleLike(ctx, post.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Equal(t, 1, count)

	_, _, err = s.ToggleLike(ctx, "missing", bob.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	posts, err := s.ListPosts(ctx, "academics", alice.ID, 30)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, 1, posts[0].LikesCount)
	assert.True(t, posts[0].Liked)

	posts, err = s.ListPosts(ctx, "academics", "", 30)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.False(t, posts[0].Liked)

	got, err := s.GetPost(ctx, post.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, got.Liked)
	assert.Equal(t, 1, got.LikesCount)

	ids, err := s.LikedPostIDs(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{post.ID}, ids)

	require.NoError(t, s.CreateComment(ctx, &Comment{PostID: post.ID, UserID: bob.ID, Content: "first"}))
	require.NoError(t, s.CreateComment(ctx, &Comment{PostID: post.ID, UserID: alice.ID, Content: "second", IsProfessional: true}))
	comments, err := s.ListComments(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "first", comments[0].Content)
	assert.True(t, comments[1].IsProfessional)
}

func TestListPosts_NewestFirstWithLimit(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	alice := newTestUser(t, s, "alice@example.com")

	for i := 0; i < 32; i++ {
		require.NoError(t, s.CreatePost(ctx, &Post{UserID: alice.ID, Content: "p", Topic: "general"}))
	}
	newest := &Post{UserID: alice.ID, Content: "newest", Topic: "general"}
	require.NoError(t, s.CreatePost(ctx, newest))

	posts, err := s.ListPosts(ctx, "general", alice.ID, 30)
	require.NoError(t, err)
	assert.Len(t, posts, 30)
	assert.Equal(t, newest.ID, posts[0].ID)
}

func TestProfessionals(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	pro := &Professional{
		FullName:        "Dr. Sam Lee",
		Title:           "Counselor",
		Specializations: []string{"Anxiety", "Grief"},
		Languages:       []string{"English"},
		Bio:             strPtr("Ten years with teens."),
		Status:          StatusPending,
	}
	user, err := s.CreateProfessionalAccount(ctx, "sam@example.com", "hash", pro)
	require.NoError(t, err)
	assert.Equal(t, user.ID, pro.UserID)

	roles, err := s.GetRoles(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{RoleProfessional, RoleUser}, roles)

	got, err := s.GetProfessionalByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Anxiety", "Grief"}, got.Specializations)
	assert.Equal(t, StatusPending, got.Status)
	assert.Nil(t, got.VerifiedAt)
	assert.Nil(t, got.CertificationDetails)

	verified, err := s.ListProfessionals(ctx, StatusVerified)
	require.NoError(t, err)
	assert.Empty(t, verified)

	at := time.Now().UTC()
	got, err = s.SetProfessionalStatus(ctx, pro.ID, StatusVerified, &at)
	require.NoError(t, err)
	assert.Equal(t, StatusVerified, got.Status)
	require.NotNil(t, got.VerifiedAt)
	assert.WithinDuration(t, at, *got.VerifiedAt, time.Second)

	verified, err = s.ListProfessionals(ctx, StatusVerified)
	require.NoError(t, err)
	assert.Len(t, verified, 1)

	got, err = s.SetProfessionalStatus(ctx, pro.ID, StatusRejected, nil)
	require.NoError(t, err)
	assert.Nil(t, got.VerifiedAt)

	_, err = s.SetProfessionalStatus(ctx, "missing", StatusVerified, nil)
	assert.ErrorIs(t, err, ErrNotFound)

	// the email is taken, so the whole registration is rolled back
	_, err = s.CreateProfessionalAccount(ctx, "sam@example.com", "hash", &Professional{FullName: "x", Title: "y", Status: StatusPending})
	assert.ErrorIs(t, err, ErrDuplicate)
	var n int
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM professionals").Scan(&n))
	assert.Equal(t, 1, n)
}

func TestDirectMessages(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	pro := newTestUser(t, s, "pro@example.com")
	alice, err := s.CreateUser(ctx, "alice@example.com", "hash", strPtr("Alice"))
	require.NoError(t, err)
	bob := newTestUser(t, s, "bob@example.com")

	send := func(from, to, content string) *DirectMessage {
		m := &DirectMessage{SenderID: from, RecipientID: to, Content: content}
		require.NoError(t, s.CreateDirectMessage(ctx, m))
		return m
	}
	send(alice.ID, pro.ID, "hello")
	send(alice.ID, pro.ID, "are you there?")
	send(pro.ID, alice.ID, "yes")
	send(bob.ID, pro.ID, "hi from bob")

	convs, err := s.ListConversations(ctx, pro.ID)
	require.NoError(t, err)
	require.Len(t, convs, 2)
	assert.Equal(t, bob.ID, convs[0].UserID)
	assert.Nil(t, convs[0].DisplayName)
	assert.Equal(t, 1, convs[0].UnreadCount)
	assert.Equal(t, alice.ID, convs[1].UserID)
	require.NotNil(t, convs[1].DisplayName)
	assert.Equal(t, "Alice", *convs[1].DisplayName)
	assert.Equal(t, "yes", convs[1].LastMessage)
	assert.Equal(t, 2, convs[1].UnreadCount)

	inbox, err := s.ListInbox(ctx, pro.ID)
	require.NoError(t, err)
	require.Len(t, inbox, 3)
	assert.Equal(t, "hi from bob", inbox[0].Content)

	n, err := s.MarkThreadRead(ctx, pro.ID, alice.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	thread, err := s.ListThread(ctx, pro.ID, alice.ID)
	require.NoError(t, err)
	require.Len(t, thread, 3)
	assert.Equal(t, "hello", thread[0].Content)
	assert.Equal(t, "yes", thread[2].Content)
	assert.True(t, thread[0].IsRead)
	assert.False(t, thread[2].IsRead, "own messages stay unread for the recipient")

	reply := &DirectMessage{SenderID: pro.ID, RecipientID: bob.ID, Content: "hello bob"}
	bobMsg := inbox[0]
	require.NoError(t, s.ReplyToMessage(ctx, bobMsg.ID, reply))
	got, err := s.GetDirectMessage(ctx, bobMsg.ID)
	require.NoError(t, err)
	assert.True(t, got.IsRead)

	_, err = s.GetDirectMessage(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestContent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	pro := newTestUser(t, s, "pro@example.com")
	other := newTestUser(t, s, "other@example.com")

	story := &Story{AuthorID: &pro.ID, Title: "A", Description: "d", Category: "Mental Health",
		Content: catalog.DefaultStoryContent(), IsProfessionalContent: true}
	require.NoError(t, s.CreateStory(ctx, story))

	got, err := s.GetStory(ctx, story.ID)
	require.NoError(t, err)
	assert.Equal(t, catalog.DefaultStoryContent(), got.Content)
	require.NotNil(t, got.AuthorID)
	assert.Equal(t, pro.ID, *got.AuthorID)

	mine, err := s.ListStories(ctx, pro.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
	theirs, err := s.ListStories(ctx, other.ID)
	require.NoError(t, err)
	assert.Empty(t, theirs)

	assert.ErrorIs(t, s.DeleteStory(ctx, story.ID, other.ID), ErrNotFound)
	require.NoError(t, s.DeleteStory(ctx, story.ID, pro.ID))
	_, err = s.GetStory(ctx, story.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	ex := &Exercise{AuthorID: pro.ID, Title: "Body scan", Description: "d", Instructions: "i", Category: "relaxation", Icon: "🌊"}
	require.NoError(t, s.CreateExercise(ctx, ex))
	all, err := s.ListExercises(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Body scan", all[0].Title)
	assert.ErrorIs(t, s.DeleteExercise(ctx, ex.ID, other.ID), ErrNotFound)
	require.NoError(t, s.DeleteExercise(ctx, ex.ID, pro.ID))

	art := &Article{AuthorID: pro.ID, Title: "Sleep", Content: "c", Emoji: strPtr("😴")}
	require.NoError(t, s.CreateArticle(ctx, art))
	arts, err := s.ListArticles(ctx, pro.ID)
	require.NoError(t, err)
	require.Len(t, arts, 1)
	require.NotNil(t, arts[0].Emoji)
	assert.Equal(t, "😴", *arts[0].Emoji)
	require.NoError(t, s.DeleteArticle(ctx, art.ID, pro.ID))
	arts, err = s.ListArticles(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, arts)
}
