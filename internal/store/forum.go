package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

const postColumns = `
    p.id, p.user_id, p.content, p.topic, p.is_professional, p.created_at,
    (SELECT COUNT(*) FROM post_likes l WHERE l.post_id = p.id) AS likes_count,
    EXISTS (SELECT 1 FROM post_likes l WHERE l.post_id = p.id AND l.user_id = ?) AS liked`

func (s *SQLiteStore) CreatePost(ctx context.Context, post *Post) error {
	post.ID = uuid.NewString()
	post.CreatedAt = now()
	post.LikesCount = 0
	post.Liked = false
	_, err := s.db.ExecContext(ctx, "INSERT INTO connect_posts (id, user_id, content, topic, is_professional, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		post.ID, post.UserID, post.Content, post.Topic, post.IsProfessional, post.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert post: %w", err)
	}
	return nil
}

// GetPost loads a post with its like count. viewerID may be empty.
func (s *SQLiteStore) GetPost(ctx context.Context, id, viewerID string) (*Post, error) {
	row := s.db.QueryRowContext(ctx, "SELECT"+postColumns+" FROM connect_posts p WHERE p.id = ?", viewerID, id)
	post, err := scanPost(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query post: %w", err)
	}
	return post, nil
}

// ListPosts returns up to limit posts of a topic, newest first. viewerID may
// be empty, in which case Liked is always false.
func (s *SQLiteStore) ListPosts(ctx context.Context, topic, viewerID string, limit int) ([]Post, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT"+postColumns+" FROM connect_posts p WHERE p.topic = ? ORDER BY p.created_at DESC, p.rowid DESC LIMIT ?",
		viewerID, topic, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}
	defer rows.Close()

	posts := []Post{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post row: %w", err)
		}
		posts = append(posts, *post)
	}
	return posts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(r rowScanner) (*Post, error) {
	var p Post
	if err := r.Scan(&p.ID, &p.UserID, &p.Content, &p.Topic, &p.IsProfessional, &p.CreatedAt, &p.LikesCount, &p.Liked); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *SQLiteStore) CreateComment(ctx context.Context, c *Comment) error {
	c.ID = uuid.NewString()
	c.CreatedAt = now()
	_, err := s.db.ExecContext(ctx, "INSERT INTO post_comments (id, post_id, user_id, content, is_professional, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		c.ID, c.PostID, c.UserID, c.Content, c.IsProfessional, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert comment: %w", err)
	}
	return nil
}

// ListComments returns the comments of a post, oldest first.
func (s *SQLiteStore) ListComments(ctx context.Context, postID string) ([]Comment, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, post_id, user_id, content, is_professional, created_at FROM post_comments WHERE post_id = ? ORDER BY created_at ASC, rowid ASC",
		postID)
	if err != nil {
		return nil, fmt.Errorf("failed to query comments: %w", err)
	}
	defer rows.Close()

	comments := []Comment{}
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.UserID, &c.Content, &c.IsProfessional, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comment row: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// ToggleLike flips the like of userID on a post and returns the new state
// and the post's like count as committed.
func (s *SQLiteStore) ToggleLike(ctx context.Context, postID, userID string) (bool, int, error) {
	var liked bool
	var count int
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var exists int
		if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM connect_posts WHERE id = ?", postID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to query post: %w", err)
		}
		if exists == 0 {
			return ErrNotFound
		}

		res, err := tx.ExecContext(ctx, "DELETE FROM post_likes WHERE post_id = ? AND user_id = ?", postID, userID)
		if err != nil {
			return fmt.Errorf("failed to delete like: %w", err)
		}
		if affected, _ := res.RowsAffected(); affected == 0 {
			_, err = tx.ExecContext(ctx, "INSERT INTO post_likes (id, post_id, user_id, created_at) VALUES (?, ?, ?, ?)",
				uuid.NewString(), postID, userID, now())
			if err != nil {
				return fmt.Errorf("failed to insert like: %w", err)
			}
			liked = true
		}

		if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM post_likes WHERE post_id = ?", postID).Scan(&count); err != nil {
			return fmt.Errorf("failed to count likes: %w", err)
		}
		return nil
	})
	if err != nil {
		return false, 0, err
	}
	return liked, count, nil
}

// LikedPostIDs returns the ids of every post userID has liked.
func (s *SQLiteStore) LikedPostIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT post_id FROM post_likes WHERE user_id = ? ORDER BY created_at, rowid", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query likes: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan like row: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
