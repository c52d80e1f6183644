package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

const storyColumns = "id, author_id, title, description, category, content, is_professional_content, created_at"

func (s *SQLiteStore) CreateStory(ctx context.Context, story *Story) error {
	story.ID = uuid.NewString()
	story.CreatedAt = now()
	content, err := json.Marshal(story.Content)
	if err != nil {
		return fmt.Errorf("failed to marshal story content: %w", err)
	}
	_, err = s.db.ExecContext(ctx, "INSERT INTO stories ("+storyColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		story.ID, story.AuthorID, story.Title, story.Description, story.Category, string(content),
		story.IsProfessionalContent, story.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert story: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetStory(ctx context.Context, id string) (*Story, error) {
	stories, err := s.listStories(ctx, "SELECT "+storyColumns+" FROM stories WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(stories) == 0 {
		return nil, ErrNotFound
	}
	return &stories[0], nil
}

// ListStories returns stored stories, newest first. authorID filters when
// not empty.
func (s *SQLiteStore) ListStories(ctx context.Context, authorID string) ([]Story, error) {
	if authorID != "" {
		return s.listStories(ctx, "SELECT "+storyColumns+" FROM stories WHERE author_id = ? ORDER BY created_at DESC, rowid DESC", authorID)
	}
	return s.listStories(ctx, "SELECT "+storyColumns+" FROM stories ORDER BY created_at DESC, rowid DESC")
}

func (s *SQLiteStore) listStories(ctx context.Context, query string, args ...any) ([]Story, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query stories: %w", err)
	}
	defer rows.Close()

	stories := []Story{}
	for rows.Next() {
		var st Story
		var authorID sql.NullString
		var content string
		if err := rows.Scan(&st.ID, &authorID, &st.Title, &st.Description, &st.Category, &content,
			&st.IsProfessionalContent, &st.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan story row: %w", err)
		}
		if err := json.Unmarshal([]byte(content), &st.Content); err != nil {
			return nil, fmt.Errorf("failed to unmarshal content of story %s: %w", st.ID, err)
		}
		st.AuthorID = nullString(authorID)
		stories = append(stories, st)
	}
	return stories, rows.Err()
}

func (s *SQLiteStore) DeleteStory(ctx context.Context, id, authorID string) error {
	return s.deleteOwned(ctx, "stories", id, authorID)
}

const exerciseColumns = "id, author_id, title, description, instructions, category, icon, created_at"

func (s *SQLiteStore) CreateExercise(ctx context.Context, ex *Exercise) error {
	ex.ID = uuid.NewString()
	ex.CreatedAt = now()
	_, err := s.db.ExecContext(ctx, "INSERT INTO wellness_exercises ("+exerciseColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		ex.ID, ex.AuthorID, ex.Title, ex.Description, ex.Instructions, ex.Category, ex.Icon, ex.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert exercise: %w", err)
	}
	return nil
}

// ListExercises returns stored exercises, newest first. authorID filters
// when not empty.
func (s *SQLiteStore) ListExercises(ctx context.Context, authorID string) ([]Exercise, error) {
	query := "SELECT " + exerciseColumns + " FROM wellness_exercises"
	var args []any
	if authorID != "" {
		query += " WHERE author_id = ?"
		args = append(args, authorID)
	}
	query += " ORDER BY created_at DESC, rowid DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query exercises: %w", err)
	}
	defer rows.Close()

	exercises := []Exercise{}
	for rows.Next() {
		var ex Exercise
		if err := rows.Scan(&ex.ID, &ex.AuthorID, &ex.Title, &ex.Description, &ex.Instructions, &ex.Category, &ex.Icon, &ex.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan exercise row: %w", err)
		}
		exercises = append(exercises, ex)
	}
	return exercises, rows.Err()
}

func (s *SQLiteStore) DeleteExercise(ctx context.Context, id, authorID string) error {
	return s.deleteOwned(ctx, "wellness_exercises", id, authorID)
}

func (s *SQLiteStore) CreateArticle(ctx context.Context, a *Article) error {
	a.ID = uuid.NewString()
	a.CreatedAt = now()
	_, err := s.db.ExecContext(ctx, "INSERT INTO learning_articles (id, author_id, title, content, emoji, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		a.ID, a.AuthorID, a.Title, a.Content, a.Emoji, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert article: %w", err)
	}
	return nil
}

// ListArticles returns stored articles, newest first. authorID filters when
// not empty.
func (s *SQLiteStore) ListArticles(ctx context.Context, authorID string) ([]Article, error) {
	query := "SELECT id, author_id, title, content, emoji, created_at FROM learning_articles"
	var args []any
	if authorID != "" {
		query += " WHERE author_id = ?"
		args = append(args, authorID)
	}
	query += " ORDER BY created_at DESC, rowid DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query articles: %w", err)
	}
	defer rows.Close()

	articles := []Article{}
	for rows.Next() {
		var a Article
		var emoji sql.NullString
		if err := rows.Scan(&a.ID, &a.AuthorID, &a.Title, &a.Content, &emoji, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan article row: %w", err)
		}
		a.Emoji = nullString(emoji)
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

func (s *SQLiteStore) DeleteArticle(ctx context.Context, id, authorID string) error {
	return s.deleteOwned(ctx, "learning_articles", id, authorID)
}

// deleteOwned removes a row of table by id when author_id matches. A row
// owned by someone else is reported as not found.
func (s *SQLiteStore) deleteOwned(ctx context.Context, table, id, authorID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = ? AND author_id = ?", id, authorID)
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}

