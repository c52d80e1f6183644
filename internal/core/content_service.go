package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gorilla/feeds"

	"safespace.app/backend/internal/auth"
	"safespace.app/backend/internal/catalog"
	"safespace.app/backend/internal/markdown"
	"safespace.app/backend/internal/store"
)

const defaultStoryCategory = "Mental Health"

type ContentStore interface {
	ProfessionalLookup
	CreateStory(ctx context.Context, story *store.Story) error
	GetStory(ctx context.Context, id string) (*store.Story, error)
	ListStories(ctx context.Context, authorID string) ([]store.Story, error)
	DeleteStory(ctx context.Context, id, authorID string) error
	CreateExercise(ctx context.Context, ex *store.Exercise) error
	ListExercises(ctx context.Context, authorID string) ([]store.Exercise, error)
	DeleteExercise(ctx context.Context, id, authorID string) error
	CreateArticle(ctx context.Context, a *store.Article) error
	ListArticles(ctx context.Context, authorID string) ([]store.Article, error)
	DeleteArticle(ctx context.Context, id, authorID string) error
}

type StoryInput struct {
	Title       string                `json:"title" validate:"required,max=200"`
	Description string                `json:"description" validate:"required,max=1000"`
	Category    string                `json:"category" validate:"max=100"`
	Content     *catalog.StoryContent `json:"content"`
}

type ExerciseInput struct {
	Title        string `json:"title" validate:"required,max=200"`
	Description  string `json:"description" validate:"max=1000"`
	Instructions string `json:"instructions" validate:"max=5000"`
	Category     string `json:"category" validate:"required,oneof=breathing grounding mindfulness gratitude relaxation"`
	Icon         string `json:"icon" validate:"max=16"`
}

type ArticleInput struct {
	Title   string `json:"title" validate:"required,max=200"`
	Content string `json:"content" validate:"required,max=20000"`
	Emoji   string `json:"emoji" validate:"max=16"`
}

// StoryLibrary is the story list: the built-in catalog and stored stories.
type StoryLibrary struct {
	Builtin  []catalog.Story `json:"builtin"`
	Authored []store.Story   `json:"authored"`
}

// LearnPage holds the static cards and the stored articles.
type LearnPage struct {
	Cards    []catalog.LearnCard `json:"cards"`
	Articles []store.Article     `json:"articles"`
}

type ContentService struct {
	store ContentStore
}

func NewContentService(st ContentStore) *ContentService {
	return &ContentService{store: st}
}

func (s *ContentService) Stories(ctx context.Context) (*StoryLibrary, error) {
	authored, err := s.store.ListStories(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list stories: %w", err)
	}
	return &StoryLibrary{Builtin: catalog.Stories(), Authored: authored}, nil
}

// Scene looks up one scene of a built-in or stored story.
func (s *ContentService) Scene(ctx context.Context, storyID, sceneID string) (catalog.Scene, error) {
	var content catalog.StoryContent
	if st, ok := catalog.StoryByID(storyID); ok {
		content = st.Content
	} else {
		st, err := s.store.GetStory(ctx, storyID)
		if err != nil {
			return catalog.Scene{}, err
		}
		content = st.Content
	}
	scene, ok := content.Scene(sceneID)
	if !ok {
		return catalog.Scene{}, store.ErrNotFound
	}
	return scene, nil
}

func (s *ContentService) CreateStory(ctx context.Context, sess auth.Session, in StoryInput) (*store.Story, error) {
	if err := s.requireVerified(ctx, sess); err != nil {
		return nil, err
	}
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Category = strings.TrimSpace(in.Category)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if in.Category == "" {
		in.Category = defaultStoryCategory
	}
	content := catalog.DefaultStoryContent()
	if in.Content != nil && len(in.Content.Scenes) > 0 {
		if err := in.Content.Validate(); err != nil {
			return nil, invalidf("%v", err)
		}
		content = *in.Content
	}

	authorID := sess.UserID
	story := &store.Story{
		AuthorID:              &authorID,
		Title:                 in.Title,
		Description:           in.Description,
		Category:              in.Category,
		Content:               content,
		IsProfessionalContent: true,
	}
	if err := s.store.CreateStory(ctx, story); err != nil {
		return nil, fmt.Errorf("failed to create story: %w", err)
	}
	return story, nil
}

func (s *ContentService) DeleteStory(ctx context.Context, sess auth.Session, id string) error {
	if err := requireSession(sess); err != nil {
		return err
	}
	return wrapDelete(s.store.DeleteStory(ctx, id, sess.UserID), "story")
}

func (s *ContentService) CreateExercise(ctx context.Context, sess auth.Session, in ExerciseInput) (*store.Exercise, error) {
	if err := s.requireVerified(ctx, sess); err != nil {
		return nil, err
	}
	in.Title = strings.TrimSpace(in.Title)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if in.Icon == "" {
		in.Icon = catalog.DefaultExerciseIcon
	}

	ex := &store.Exercise{
		AuthorID:     sess.UserID,
		Title:        in.Title,
		Description:  strings.TrimSpace(in.Description),
		Instructions: strings.TrimSpace(in.Instructions),
		Category:     in.Category,
		Icon:         in.Icon,
	}
	if err := s.store.CreateExercise(ctx, ex); err != nil {
		return nil, fmt.Errorf("failed to create exercise: %w", err)
	}
	return ex, nil
}

func (s *ContentService) DeleteExercise(ctx context.Context, sess auth.Session, id string) error {
	if err := requireSession(sess); err != nil {
		return err
	}
	return wrapDelete(s.store.DeleteExercise(ctx, id, sess.UserID), "exercise")
}

// Learn returns the static cards and every stored article with its body
// rendered to HTML.
func (s *ContentService) Learn(ctx context.Context) (*LearnPage, error) {
	articles, err := s.renderedArticles(ctx)
	if err != nil {
		return nil, err
	}
	return &LearnPage{Cards: catalog.LearnCards, Articles: articles}, nil
}

func (s *ContentService) renderedArticles(ctx context.Context) ([]store.Article, error) {
	articles, err := s.store.ListArticles(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}
	for i := range articles {
		if articles[i].ContentHTML, err = markdown.ToHTML(articles[i].Content); err != nil {
			return nil, err
		}
	}
	return articles, nil
}

// ArticleFeed renders the stored articles as an RSS 2.0 document. siteURL is
// the public address of the app and prefixes each item link.
func (s *ContentService) ArticleFeed(ctx context.Context, siteURL string) (string, error) {
	articles, err := s.renderedArticles(ctx)
	if err != nil {
		return "", err
	}
	siteURL = strings.TrimRight(siteURL, "/")

	feed := &feeds.Feed{
		Title:       "Safe Space: Learn",
		Link:        &feeds.Link{Href: siteURL + "/learn"},
		Description: "Articles from verified mental health professionals.",
		Created:     time.Now().UTC(),
	}
	for _, a := range articles {
		title := a.Title
		if a.Emoji != nil {
			title = *a.Emoji + " " + title
		}
		feed.Items = append(feed.Items, &feeds.Item{
			Id:      a.ID,
			Title:   title,
			Link:    &feeds.Link{Href: siteURL + "/learn#" + a.ID},
			Content: a.ContentHTML,
			Created: a.CreatedAt,
		})
	}
	rss, err := feed.ToRss()
	if err != nil {
		return "", fmt.Errorf("failed to build article feed: %w", err)
	}
	return rss, nil
}

func (s *ContentService) CreateArticle(ctx context.Context, sess auth.Session, in ArticleInput) (*store.Article, error) {
	if err := s.requireVerified(ctx, sess); err != nil {
		return nil, err
	}
	in.Title = strings.TrimSpace(in.Title)
	in.Content = strings.TrimSpace(in.Content)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	a := &store.Article{AuthorID: sess.UserID, Title: in.Title, Content: in.Content, Emoji: optional(in.Emoji)}
	if err := s.store.CreateArticle(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to create article: %w", err)
	}
	return a, nil
}

func (s *ContentService) DeleteArticle(ctx context.Context, sess auth.Session, id string) error {
	if err := requireSession(sess); err != nil {
		return err
	}
	return wrapDelete(s.store.DeleteArticle(ctx, id, sess.UserID), "article")
}

func (s *ContentService) requireVerified(ctx context.Context, sess auth.Session) error {
	if err := requireSession(sess); err != nil {
		return err
	}
	_, verified, err := verifiedProfessional(ctx, s.store, sess.UserID)
	if err != nil {
		return err
	}
	if !verified {
		return ErrNotProfessional
	}
	return nil
}

// wrapDelete keeps ErrNotFound visible to callers and wraps anything else.
func wrapDelete(err error, what string) error {
	if err == nil || errors.Is(err, store.ErrNotFound) {
		return err
	}
	return fmt.Errorf("failed to delete %s: %w", what, err)
}
