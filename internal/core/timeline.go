package core

import (
	"fmt"

	"safespace.app/backend/internal/relay"
	"safespace.app/backend/internal/store"
)

// Entry is one message shown in a chat timeline. A pending entry has a
// LocalID and no stored row yet; a confirmed entry mirrors a stored row.
type Entry struct {
	LocalID string            `json:"local_id,omitempty"`
	Pending bool              `json:"pending"`
	Message store.ChatMessage `json:"message"`
}

// Timeline is the ordered view of a chat. It is not safe for concurrent use.
type Timeline struct {
	entries []Entry
	seq     int
}

func NewTimeline(history []store.ChatMessage) *Timeline {
	t := &Timeline{entries: make([]Entry, 0, len(history)+2)}
	for _, m := range history {
		t.entries = append(t.entries, Entry{Message: m})
	}
	return t
}

// Entries returns a copy of the current entries.
func (t *Timeline) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

func (t *Timeline) Len() int { return len(t.entries) }

// Turns returns the confirmed messages as relay turns.
func (t *Timeline) Turns() []relay.Turn {
	turns := make([]relay.Turn, 0, len(t.entries))
	for _, e := range t.entries {
		if e.Pending {
			continue
		}
		turns = append(turns, relay.Turn{Role: e.Message.Role, Content: e.Message.Content})
	}
	return turns
}

func (t *Timeline) appendPending(role, content string) Entry {
	t.seq++
	e := Entry{
		LocalID: fmt.Sprintf("temp-%d", t.seq),
		Pending: true,
		Message: store.ChatMessage{Role: role, Content: content},
	}
	t.entries = append(t.entries, e)
	return e
}

func (t *Timeline) find(localID string) int {
	for i, e := range t.entries {
		if e.Pending && e.LocalID == localID {
			return i
		}
	}
	return -1
}

func (t *Timeline) setContent(localID, content string) (Entry, bool) {
	i := t.find(localID)
	if i < 0 {
		return Entry{}, false
	}
	t.entries[i].Message.Content = content
	return t.entries[i], true
}

func (t *Timeline) confirm(localID string, row store.ChatMessage) {
	if i := t.find(localID); i >= 0 {
		t.entries[i] = Entry{Message: row}
	}
}

func (t *Timeline) remove(localID string) {
	if i := t.find(localID); i >= 0 {
		t.entries = append(t.entries[:i], t.entries[i+1:]...)
	}
}
