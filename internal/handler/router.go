package handler

import (
	"io/fs"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/marks-app/marks/internal/api"
	"github.com/marks-app/marks/internal/auth"
	"github.com/marks-app/marks/internal/feed"
	"github.com/marks-app/marks/internal/store"
	"github.com/marks-app/marks/web"
)

// Deps holds all dependencies required to build the HTTP router.
type Deps struct {
	SessionManager *scs.SessionManager
	AuthHandlers   *auth.Handlers
	AuthMiddleware *auth.Middleware
	APIAuth        *auth.APIAuthMiddleware
	BookmarkStore  store.BookmarkStoreIface
	Hub            *feed.Hub
	Log            *zap.Logger
}

// NewRouter assembles the full chi router with all middleware and routes.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(deps.SessionManager.LoadAndSave)

	// Static assets (embedded). fs.Sub so the file server sees css/app.css
	// directly, not static/css/... paths.
	staticSub, err := fs.Sub(web.StaticFS, "static")
	if err != nil {
		panic("failed to sub static FS: " + err.Error())
	}
	r.Handle("/static/*", http.StripPrefix("/static", http.FileServerFS(staticSub)))

	// Auth routes (no auth required)
	r.Get("/auth/login", deps.AuthHandlers.Login)
	r.Get("/auth/callback", deps.AuthHandlers.Callback)
	r.Post("/auth/logout", deps.AuthHandlers.Logout)

	// Landing page (unauthenticated; redirects authenticated users to /app)
	landing := NewLandingHandler()
	r.With(deps.AuthMiddleware.OptionalUser).Get("/", landing.Index)

	// Authenticated single page
	app := NewAppHandler()
	r.Group(func(r chi.Router) {
		r.Use(deps.AuthMiddleware.RequireAuth)
		r.Get("/app", app.Show)
	})

	// API sub-router at /api/v1 (Bearer token or web session)
	apiRouter := api.NewAPIRouter(api.Deps{
		Auth:      deps.APIAuth,
		Bookmarks: deps.BookmarkStore,
		Hub:       deps.Hub,
		Log:       deps.Log,
	})
	r.Mount("/api/v1", apiRouter)

	// Operational endpoints
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return r
}
