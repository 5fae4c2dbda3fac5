package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/marks-app/marks/internal/auth"
	"github.com/marks-app/marks/internal/feed"
	"github.com/marks-app/marks/internal/store"
)

// Deps holds all dependencies required to build the API router.
type Deps struct {
	Auth      *auth.APIAuthMiddleware
	Bookmarks store.BookmarkStoreIface
	Hub       *feed.Hub
	Log       *zap.Logger
}

// NewAPIRouter creates a chi sub-router for /api/v1. All routes require
// authentication (Bearer token or web session).
func NewAPIRouter(deps Deps) chi.Router {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(deps.Auth.Authenticate)

	r.Group(func(r chi.Router) {
		r.Use(jsonContentType)

		profile := &profileHandler{}
		r.Get("/profile", profile.Get)

		bookmarks := &bookmarksHandler{bookmarks: deps.Bookmarks, log: log}
		r.Get("/bookmarks", bookmarks.List)
		r.Post("/bookmarks", bookmarks.Create)
		r.Delete("/bookmarks/{id}", bookmarks.Delete)
	})

	// Outside the JSON group: this endpoint upgrades to WebSocket.
	feedH := newFeedHandler(deps.Hub, log)
	r.Get("/feed", feedH.Stream)

	return r
}

// jsonContentType sets Content-Type: application/json on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}
