package core

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"safespace.app/backend/internal/auth"
	"safespace.app/backend/internal/relay"
	"safespace.app/backend/internal/store"
)

func newStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "core.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func sessionFor(u *store.User) auth.Session {
	return auth.Session{UserID: u.ID, Email: u.Email, TokenID: "t-" + u.ID, ExpiresAt: time.Now().Add(time.Hour)}
}

func newUser(t *testing.T, st *store.SQLiteStore, email string) (*store.User, auth.Session) {
	t.Helper()
	u, err := st.CreateUser(context.Background(), email, "hash", nil)
	require.NoError(t, err)
	return u, sessionFor(u)
}

// newProfessional registers a professional with the given status.
func newProfessional(t *testing.T, st *store.SQLiteStore, email, status string) (*store.Professional, auth.Session) {
	t.Helper()
	pro := &store.Professional{FullName: "Dr. " + email, Title: "Counselor", Status: status}
	if status == store.StatusVerified {
		at := time.Now().UTC()
		pro.VerifiedAt = &at
	}
	u, err := st.CreateProfessionalAccount(context.Background(), email, "hash", pro)
	require.NoError(t, err)
	return pro, sessionFor(u)
}

// fakeCompleter emits fragments through onDelta and then returns err.
type fakeCompleter struct {
	fragments []string
	err       error

	calls     int
	lastMode  string
	lastTurns []relay.Turn
}

func (f *fakeCompleter) Complete(ctx context.Context, mode string, turns []relay.Turn, onDelta func(string)) (string, error) {
	f.calls++
	f.lastMode = mode
	f.lastTurns = turns
	var text string
	for _, frag := range f.fragments {
		text += frag
		if onDelta != nil {
			onDelta(frag)
		}
	}
	return text, f.err
}
