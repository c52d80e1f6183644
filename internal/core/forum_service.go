package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"safespace.app/backend/internal/auth"
	"safespace.app/backend/internal/catalog"
	"safespace.app/backend/internal/store"
)

const (
	forumPostLimit = 30
	defaultTopic   = "general"
)

type ForumStore interface {
	ProfessionalLookup
	CreatePost(ctx context.Context, post *store.Post) error
	GetPost(ctx context.Context, id, viewerID string) (*store.Post, error)
	ListPosts(ctx context.Context, topic, viewerID string, limit int) ([]store.Post, error)
	CreateComment(ctx context.Context, c *store.Comment) error
	ListComments(ctx context.Context, postID string) ([]store.Comment, error)
	ToggleLike(ctx context.Context, postID, userID string) (bool, int, error)
	LikedPostIDs(ctx context.Context, userID string) ([]string, error)
}

// LikeState is the committed like state of a post for one user.
type LikeState struct {
	PostID     string `json:"post_id"`
	Liked      bool   `json:"liked"`
	LikesCount int    `json:"likes_count"`
}

type ForumService struct {
	store ForumStore
}

func NewForumService(st ForumStore) *ForumService {
	return &ForumService{store: st}
}

func (s *ForumService) CreatePost(ctx context.Context, sess auth.Session, topic, content string) (*store.Post, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	if !catalog.IsTopic(topic) {
		return nil, invalidf("unknown topic %q", topic)
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, invalidf("post content is required")
	}
	_, verified, err := verifiedProfessional(ctx, s.store, sess.UserID)
	if err != nil {
		return nil, err
	}

	post := &store.Post{UserID: sess.UserID, Topic: topic, Content: content, IsProfessional: verified, IsMine: true}
	if err := s.store.CreatePost(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}
	return post, nil
}

// ListPosts returns the newest posts of a topic. viewer may be the zero
// session, in which case no post is marked as liked.
func (s *ForumService) ListPosts(ctx context.Context, topic string, viewer auth.Session) ([]store.Post, error) {
	if topic == "" {
		topic = defaultTopic
	}
	if !catalog.IsTopic(topic) {
		return nil, invalidf("unknown topic %q", topic)
	}
	posts, err := s.store.ListPosts(ctx, topic, viewer.UserID, forumPostLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	for i := range posts {
		posts[i].IsMine = viewer.UserID != "" && posts[i].UserID == viewer.UserID
	}
	return posts, nil
}

func (s *ForumService) AddComment(ctx context.Context, sess auth.Session, postID, content string) (*store.Comment, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, invalidf("comment content is required")
	}
	if _, err := s.store.GetPost(ctx, postID, ""); err != nil {
		return nil, err
	}
	_, verified, err := verifiedProfessional(ctx, s.store, sess.UserID)
	if err != nil {
		return nil, err
	}

	c := &store.Comment{PostID: postID, UserID: sess.UserID, Content: content, IsProfessional: verified, IsMine: true}
	if err := s.store.CreateComment(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	return c, nil
}

// ListComments returns the comments of a post, oldest first. viewer may be
// the zero session.
func (s *ForumService) ListComments(ctx context.Context, postID string, viewer auth.Session) ([]store.Comment, error) {
	if _, err := s.store.GetPost(ctx, postID, ""); err != nil {
		return nil, err
	}
	comments, err := s.store.ListComments(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	for i := range comments {
		comments[i].IsMine = viewer.UserID != "" && comments[i].UserID == viewer.UserID
	}
	return comments, nil
}

func (s *ForumService) ToggleLike(ctx context.Context, sess auth.Session, postID string) (LikeState, error) {
	if err := requireSession(sess); err != nil {
		return LikeState{}, err
	}
	liked, count, err := s.store.ToggleLike(ctx, postID, sess.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return LikeState{}, err
		}
		return LikeState{}, fmt.Errorf("failed to toggle like: %w", err)
	}
	return LikeState{PostID: postID, Liked: liked, LikesCount: count}, nil
}

// LikedPosts returns the ids of the posts the user has liked.
func (s *ForumService) LikedPosts(ctx context.Context, sess auth.Session) ([]string, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	ids, err := s.store.LikedPostIDs(ctx, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list likes: %w", err)
	}
	return ids, nil
}
