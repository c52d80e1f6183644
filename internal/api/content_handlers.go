package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"safespace.app/backend/internal/core"
)

func (h *APIHandler) ListStoriesHandler(w http.ResponseWriter, r *http.Request) {
	lib, err := h.svc.Content.Stories(r.Context())
	if err != nil {
		h.fail(w, err, "list stories")
		return
	}
	writeJSON(w, http.StatusOK, lib)
}

func (h *APIHandler) SceneHandler(w http.ResponseWriter, r *http.Request) {
	scene, err := h.svc.Content.Scene(r.Context(), chi.URLParam(r, "storyID"), chi.URLParam(r, "sceneID"))
	if err != nil {
		h.fail(w, err, "load scene")
		return
	}
	writeJSON(w, http.StatusOK, scene)
}

func (h *APIHandler) LearnHandler(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.Content.Learn(r.Context())
	if err != nil {
		h.fail(w, err, "load articles")
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// ArticleFeedHandler serves the learning articles as RSS.
func (h *APIHandler) ArticleFeedHandler(w http.ResponseWriter, r *http.Request) {
	rss, err := h.svc.Content.ArticleFeed(r.Context(), h.publicURL)
	if err != nil {
		h.fail(w, err, "build article feed")
		return
	}
	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	w.Write([]byte(rss))
}

func (h *APIHandler) DirectoryHandler(w http.ResponseWriter, r *http.Request) {
	pros, err := h.svc.Professionals.Directory(r.Context())
	if err != nil {
		h.fail(w, err, "list professionals")
		return
	}
	writeJSON(w, http.StatusOK, pros)
}

func (h *APIHandler) RegisterProfessionalHandler(w http.ResponseWriter, r *http.Request) {
	var form core.RegistrationForm
	if !decodeJSON(w, r, &form) {
		return
	}
	pro, err := h.svc.Professionals.Register(r.Context(), form)
	if err != nil {
		h.fail(w, err, "register professional")
		return
	}
	writeJSON(w, http.StatusCreated, pro)
}

func (h *APIHandler) PendingProfessionalsHandler(w http.ResponseWriter, r *http.Request) {
	pros, err := h.svc.Professionals.Pending(r.Context(), session(r))
	if err != nil {
		h.fail(w, err, "list pending professionals")
		return
	}
	writeJSON(w, http.StatusOK, pros)
}

type ReviewRequest struct {
	Decision string `json:"decision"`
}

func (h *APIHandler) ReviewProfessionalHandler(w http.ResponseWriter, r *http.Request) {
	var req ReviewRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	pro, err := h.svc.Professionals.Review(r.Context(), session(r), chi.URLParam(r, "id"), req.Decision)
	if err != nil {
		h.fail(w, err, "review professional")
		return
	}
	writeJSON(w, http.StatusOK, pro)
}

func (h *APIHandler) DashboardHandler(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.Dashboard.Load(r.Context(), session(r))
	if err != nil {
		h.fail(w, err, "load dashboard")
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *APIHandler) CreateStoryHandler(w http.ResponseWriter, r *http.Request) {
	var in core.StoryInput
	if !decodeJSON(w, r, &in) {
		return
	}
	story, err := h.svc.Content.CreateStory(r.Context(), session(r), in)
	if err != nil {
		h.fail(w, err, "create story")
		return
	}
	writeJSON(w, http.StatusCreated, story)
}

func (h *APIHandler) DeleteStoryHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Content.DeleteStory(r.Context(), session(r), chi.URLParam(r, "id")); err != nil {
		h.fail(w, err, "delete story")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) CreateExerciseHandler(w http.ResponseWriter, r *http.Request) {
	var in core.ExerciseInput
	if !decodeJSON(w, r, &in) {
		return
	}
	ex, err := h.svc.Content.CreateExercise(r.Context(), session(r), in)
	if err != nil {
		h.fail(w, err, "create exercise")
		return
	}
	writeJSON(w, http.StatusCreated, ex)
}

func (h *APIHandler) DeleteExerciseHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Content.DeleteExercise(r.Context(), session(r), chi.URLParam(r, "id")); err != nil {
		h.fail(w, err, "delete exercise")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) CreateArticleHandler(w http.ResponseWriter, r *http.Request) {
	var in core.ArticleInput
	if !decodeJSON(w, r, &in) {
		return
	}
	a, err := h.svc.Content.CreateArticle(r.Context(), session(r), in)
	if err != nil {
		h.fail(w, err, "create article")
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (h *APIHandler) DeleteArticleHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Content.DeleteArticle(r.Context(), session(r), chi.URLParam(r, "id")); err != nil {
		h.fail(w, err, "delete article")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
