package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	appmw "safespace.app/backend/internal/middleware"
	"safespace.app/backend/internal/relay"
)

// Relay is the chat relay endpoint and the limiter guarding it. Requests
// for which Exempt reports true skip the limiter.
type Relay struct {
	Path    string
	Handler http.Handler
	Limiter *appmw.LimiterStore
	Exempt  func(r *http.Request) bool
}

func NewRouter(apiHandler *APIHandler, rl Relay) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)       // Basic request logging
	r.Use(middleware.Recoverer)    // Recover from panics
	r.Use(middleware.StripSlashes) // Ensure consistent path handling

	if rl.Handler != nil {
		relayRoute := r.With()
		if rl.Limiter != nil {
			limit := appmw.RateLimit(rl.Limiter, func(w http.ResponseWriter, _ *http.Request) {
				relay.WriteError(w, http.StatusTooManyRequests, "Rate limits exceeded, please try again later.")
			})
			if rl.Exempt != nil {
				limit = appmw.SkipIf(rl.Exempt, limit)
			}
			relayRoute = r.With(limit)
		}
		relayRoute.Handle(rl.Path, rl.Handler)
	}

	// All API routes will be under /api
	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Get("/health", apiHandler.HealthHandler)
		r.Get("/catalog", apiHandler.CatalogHandler)
		r.Post("/auth/signup", apiHandler.SignupHandler)
		r.Post("/auth/login", apiHandler.LoginHandler)
		r.Get("/stories", apiHandler.ListStoriesHandler)
		r.Get("/stories/{storyID}/scenes/{sceneID}", apiHandler.SceneHandler)
		r.Get("/exercises", apiHandler.ListExercisesHandler)
		r.Get("/learn", apiHandler.LearnHandler)
		r.Get("/learn/rss", apiHandler.ArticleFeedHandler)
		r.Get("/professionals", apiHandler.DirectoryHandler)
		r.Post("/professionals/register", apiHandler.RegisterProfessionalHandler)
		r.With(apiHandler.OptionalSession).Get("/forum/posts/{postID}/comments", apiHandler.ListCommentsHandler)
		r.With(apiHandler.OptionalSession).Get("/forum/posts", apiHandler.ListPostsHandler)

		// User-authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(apiHandler.JWTAuthMiddleware)

			r.Post("/auth/logout", apiHandler.LogoutHandler)
			r.Get("/me", apiHandler.MeHandler)

			r.Get("/chat/messages", apiHandler.ListChatMessagesHandler)
			r.Post("/chat/messages", apiHandler.PostChatMessageHandler)
			r.Delete("/chat/messages", apiHandler.ClearChatHandler)

			r.Get("/journal", apiHandler.ListJournalEntriesHandler)
			r.Post("/journal", apiHandler.CreateJournalEntryHandler)
			r.Delete("/journal/{entryID}", apiHandler.DeleteJournalEntryHandler)

			r.Get("/moods", apiHandler.ListMoodsHandler)
			r.Post("/moods", apiHandler.RecordMoodHandler)

			r.Post("/forum/posts", apiHandler.CreatePostHandler)
			r.Post("/forum/posts/{postID}/comments", apiHandler.AddCommentHandler)
			r.Post("/forum/posts/{postID}/like", apiHandler.ToggleLikeHandler)
			r.Get("/forum/likes", apiHandler.LikedPostsHandler)

			r.Post("/messages", apiHandler.SendMessageHandler)
			r.Get("/messages/conversations", apiHandler.ConversationsHandler)
			r.Get("/messages/inbox", apiHandler.InboxHandler)
			r.Get("/messages/with/{userID}", apiHandler.ThreadHandler)
			r.Post("/messages/{messageID}/reply", apiHandler.ReplyHandler)

			r.Get("/dashboard", apiHandler.DashboardHandler)
			r.Post("/dashboard/exercises", apiHandler.CreateExerciseHandler)
			r.Delete("/dashboard/exercises/{id}", apiHandler.DeleteExerciseHandler)
			r.Post("/dashboard/stories", apiHandler.CreateStoryHandler)
			r.Delete("/dashboard/stories/{id}", apiHandler.DeleteStoryHandler)
			r.Post("/dashboard/articles", apiHandler.CreateArticleHandler)
			r.Delete("/dashboard/articles/{id}", apiHandler.DeleteArticleHandler)

			r.Get("/admin/professionals/pending", apiHandler.PendingProfessionalsHandler)
			r.Post("/admin/professionals/{id}/review", apiHandler.ReviewProfessionalHandler)
		})
	})

	return r
}
