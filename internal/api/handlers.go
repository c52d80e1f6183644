package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"safespace.app/backend/internal/auth"
	"safespace.app/backend/internal/catalog"
	"safespace.app/backend/internal/core"
	"safespace.app/backend/internal/logger"
	"safespace.app/backend/internal/relay"
	"safespace.app/backend/internal/store"
)

const maxBodyBytes = 1 << 20

// Services is everything the HTTP layer calls into.
type Services struct {
	Accounts      *core.AccountService
	Chat          *core.ChatService
	Journal       *core.JournalService
	Forum         *core.ForumService
	Wellness      *core.WellnessService
	Content       *core.ContentService
	Professionals *core.ProfessionalService
	Messaging     *core.MessagingService
	Dashboard     *core.DashboardService
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type APIHandler struct {
	svc       Services
	db        Pinger
	publicURL string
	logger    *logger.Logger
}

// NewAPIHandler builds the handlers. publicURL is the site's external base
// URL, used for absolute links such as those in the article feed.
func NewAPIHandler(svc Services, db Pinger, publicURL string, log *logger.Logger) *APIHandler {
	return &APIHandler{svc: svc, db: db, publicURL: publicURL, logger: log}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
}

// JWTAuthMiddleware rejects requests without a valid, unrevoked bearer token
// and puts the session on the request context.
func (h *APIHandler) JWTAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "Authorization header is required")
			return
		}
		sess, err := h.svc.Accounts.Authenticate(r.Context(), token)
		if err != nil {
			h.fail(w, err, "authenticate")
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.WithSession(r.Context(), sess)))
	})
}

// OptionalSession attaches a session when a valid token is sent and lets
// anonymous requests through otherwise.
func (h *APIHandler) OptionalSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token := bearerToken(r); token != "" {
			if sess, err := h.svc.Accounts.Authenticate(r.Context(), token); err == nil {
				r = r.WithContext(auth.WithSession(r.Context(), sess))
			}
		}
		next.ServeHTTP(w, r)
	})
}

func session(r *http.Request) auth.Session {
	sess, _ := auth.SessionFrom(r.Context())
	return sess
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrUnauthenticated), errors.Is(err, core.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, core.ErrForbidden), errors.Is(err, core.ErrNotProfessional):
		return http.StatusForbidden
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, relay.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, relay.ErrUnavailable):
		return http.StatusPaymentRequired
	default:
		return http.StatusInternalServerError
	}
}

// errorMessage is the text shown to the caller for err. Internal failures
// are not described.
func errorMessage(err error, action string) string {
	switch statusFor(err) {
	case http.StatusInternalServerError:
		return "Failed to " + action
	case http.StatusConflict:
		return "Email is already registered"
	case http.StatusTooManyRequests:
		return "Rate limits exceeded, please try again later."
	case http.StatusPaymentRequired:
		return "Service temporarily unavailable."
	}
	if errors.Is(err, core.ErrValidation) {
		return err.Error()
	}
	// Drop wrapping prefixes and keep the sentinel's text.
	for _, sentinel := range []error{
		core.ErrUnauthenticated, core.ErrInvalidCredentials, core.ErrForbidden,
		core.ErrNotProfessional, store.ErrNotFound,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}

func (h *APIHandler) fail(w http.ResponseWriter, err error, action string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", "action", action, "error", err)
	}
	writeError(w, status, errorMessage(err, action))
}

func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(r.Context()); err != nil {
		h.logger.Error("health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type catalogResponse struct {
	Topics             []catalog.Option `json:"topics"`
	Moods              []catalog.Option `json:"moods"`
	EmotionTags        []string         `json:"emotion_tags"`
	Specializations    []string         `json:"specializations"`
	Languages          []string         `json:"languages"`
	ExerciseCategories []string         `json:"exercise_categories"`
	ExerciseIcons      []string         `json:"exercise_icons"`
}

func (h *APIHandler) CatalogHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, catalogResponse{
		Topics:             catalog.Topics,
		Moods:              catalog.Moods,
		EmotionTags:        catalog.EmotionTags,
		Specializations:    catalog.Specializations,
		Languages:          catalog.Languages,
		ExerciseCategories: catalog.ExerciseCategories,
		ExerciseIcons:      catalog.ExerciseIcons,
	})
}

func (h *APIHandler) SignupHandler(w http.ResponseWriter, r *http.Request) {
	var req core.Credentials
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.Accounts.Signup(r.Context(), req)
	if err != nil {
		h.fail(w, err, "create user")
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}
	res, err := h.svc.Accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(w, err, "log in")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *APIHandler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Accounts.Logout(r.Context(), session(r)); err != nil {
		h.fail(w, err, "log out")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) MeHandler(w http.ResponseWriter, r *http.Request) {
	me, err := h.svc.Accounts.Me(r.Context(), session(r))
	if err != nil {
		h.fail(w, err, "load account")
		return
	}
	writeJSON(w, http.StatusOK, me)
}

// writeEvent writes one server-sent event and flushes it.
func writeEvent(w http.ResponseWriter, rc *http.ResponseController, event string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", event, err)
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	if err := rc.Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
		return err
	}
	return nil
}
