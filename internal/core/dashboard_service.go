package core

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"safespace.app/backend/internal/auth"
	"safespace.app/backend/internal/store"
)

type DashboardStore interface {
	ProfessionalLookup
	ListExercises(ctx context.Context, authorID string) ([]store.Exercise, error)
	ListStories(ctx context.Context, authorID string) ([]store.Story, error)
	ListArticles(ctx context.Context, authorID string) ([]store.Article, error)
	ListInbox(ctx context.Context, userID string) ([]store.DirectMessage, error)
}

type Dashboard struct {
	Professional *store.Professional   `json:"professional"`
	Exercises    []store.Exercise      `json:"exercises"`
	Stories      []store.Story         `json:"stories"`
	Articles     []store.Article       `json:"articles"`
	Inbox        []store.DirectMessage `json:"inbox"`
	UnreadCount  int                   `json:"unread_count"`
}

type DashboardService struct {
	store DashboardStore
}

func NewDashboardService(st DashboardStore) *DashboardService {
	return &DashboardService{store: st}
}

// Load gathers everything the therapist dashboard shows. The parts are
// loaded concurrently; the first failure cancels the rest.
func (s *DashboardService) Load(ctx context.Context, sess auth.Session) (*Dashboard, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}

	d := &Dashboard{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		pro, err := s.store.GetProfessionalByUserID(gctx, sess.UserID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrNotProfessional
			}
			return fmt.Errorf("failed to load professional: %w", err)
		}
		d.Professional = pro
		return nil
	})
	g.Go(func() error {
		var err error
		d.Exercises, err = s.store.ListExercises(gctx, sess.UserID)
		return err
	})
	g.Go(func() error {
		var err error
		d.Stories, err = s.store.ListStories(gctx, sess.UserID)
		return err
	})
	g.Go(func() error {
		var err error
		d.Articles, err = s.store.ListArticles(gctx, sess.UserID)
		return err
	})
	g.Go(func() error {
		var err error
		d.Inbox, err = s.store.ListInbox(gctx, sess.UserID)
		return err
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, ErrNotProfessional) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load dashboard: %w", err)
	}

	for _, m := range d.Inbox {
		if !m.IsRead {
			d.UnreadCount++
		}
	}
	return d, nil
}
