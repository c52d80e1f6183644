package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type JournalRequest struct {
	Content     string   `json:"content"`
	EmotionTags []string `json:"emotion_tags"`
	IsAnonymous bool     `json:"is_anonymous"`
}

func (h *APIHandler) CreateJournalEntryHandler(w http.ResponseWriter, r *http.Request) {
	var req JournalRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	entry, err := h.svc.Journal.Reflect(r.Context(), session(r), req.Content, req.EmotionTags, req.IsAnonymous)
	if err != nil {
		h.fail(w, err, "save journal entry")
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (h *APIHandler) ListJournalEntriesHandler(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.Journal.List(r.Context(), session(r))
	if err != nil {
		h.fail(w, err, "list journal entries")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *APIHandler) DeleteJournalEntryHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Journal.Delete(r.Context(), session(r), chi.URLParam(r, "entryID")); err != nil {
		h.fail(w, err, "delete journal entry")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type MoodRequest struct {
	Mood string `json:"mood"`
	Note string `json:"note"`
}

func (h *APIHandler) RecordMoodHandler(w http.ResponseWriter, r *http.Request) {
	var req MoodRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	entry, err := h.svc.Wellness.RecordMood(r.Context(), session(r), req.Mood, req.Note)
	if err != nil {
		h.fail(w, err, "record mood")
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (h *APIHandler) ListMoodsHandler(w http.ResponseWriter, r *http.Request) {
	moods, err := h.svc.Wellness.RecentMoods(r.Context(), session(r))
	if err != nil {
		h.fail(w, err, "list moods")
		return
	}
	writeJSON(w, http.StatusOK, moods)
}

func (h *APIHandler) ListExercisesHandler(w http.ResponseWriter, r *http.Request) {
	toolkit, err := h.svc.Wellness.Exercises(r.Context())
	if err != nil {
		h.fail(w, err, "list exercises")
		return
	}
	writeJSON(w, http.StatusOK, toolkit)
}

type PostRequest struct {
	Topic   string `json:"topic"`
	Content string `json:"content"`
}

func (h *APIHandler) CreatePostHandler(w http.ResponseWriter, r *http.Request) {
	var req PostRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	post, err := h.svc.Forum.CreatePost(r.Context(), session(r), req.Topic, req.Content)
	if err != nil {
		h.fail(w, err, "create post")
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

func (h *APIHandler) ListPostsHandler(w http.ResponseWriter, r *http.Request) {
	posts, err := h.svc.Forum.ListPosts(r.Context(), r.URL.Query().Get("topic"), session(r))
	if err != nil {
		h.fail(w, err, "list posts")
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

type ContentRequest struct {
	Content string `json:"content"`
}

func (h *APIHandler) AddCommentHandler(w http.ResponseWriter, r *http.Request) {
	var req ContentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	c, err := h.svc.Forum.AddComment(r.Context(), session(r), chi.URLParam(r, "postID"), req.Content)
	if err != nil {
		h.fail(w, err, "add comment")
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *APIHandler) ListCommentsHandler(w http.ResponseWriter, r *http.Request) {
	comments, err := h.svc.Forum.ListComments(r.Context(), chi.URLParam(r, "postID"), session(r))
	if err != nil {
		h.fail(w, err, "list comments")
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

func (h *APIHandler) ToggleLikeHandler(w http.ResponseWriter, r *http.Request) {
	state, err := h.svc.Forum.ToggleLike(r.Context(), session(r), chi.URLParam(r, "postID"))
	if err != nil {
		h.fail(w, err, "toggle like")
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *APIHandler) LikedPostsHandler(w http.ResponseWriter, r *http.Request) {
	ids, err := h.svc.Forum.LikedPosts(r.Context(), session(r))
	if err != nil {
		h.fail(w, err, "list likes")
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"post_ids": ids})
}

type DirectMessageRequest struct {
	RecipientID string `json:"recipient_id"`
	Content     string `json:"content"`
}

func (h *APIHandler) SendMessageHandler(w http.ResponseWriter, r *http.Request) {
	var req DirectMessageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	msg, err := h.svc.Messaging.Send(r.Context(), session(r), req.RecipientID, req.Content)
	if err != nil {
		h.fail(w, err, "send message")
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

func (h *APIHandler) ConversationsHandler(w http.ResponseWriter, r *http.Request) {
	convs, err := h.svc.Messaging.Conversations(r.Context(), session(r))
	if err != nil {
		h.fail(w, err, "list conversations")
		return
	}
	writeJSON(w, http.StatusOK, convs)
}

func (h *APIHandler) InboxHandler(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.svc.Messaging.Inbox(r.Context(), session(r))
	if err != nil {
		h.fail(w, err, "list inbox")
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

func (h *APIHandler) ThreadHandler(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.svc.Messaging.Thread(r.Context(), session(r), chi.URLParam(r, "userID"))
	if err != nil {
		h.fail(w, err, "load conversation")
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

func (h *APIHandler) ReplyHandler(w http.ResponseWriter, r *http.Request) {
	var req ContentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	msg, err := h.svc.Messaging.Reply(r.Context(), session(r), chi.URLParam(r, "messageID"), req.Content)
	if err != nil {
		h.fail(w, err, "send reply")
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}
