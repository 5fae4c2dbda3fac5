package client

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// App wires the session manager, the cached view, and the live-update
// listener into the full synchronization loop:
//
//	session resolves → view attaches and fetches → listener streams →
//	any change triggers a full re-fetch → session ends → everything detaches.
type App struct {
	Sessions *SessionManager
	View     *View

	persistence Persistence
	feeds       FeedOpener
	log         *zap.Logger

	mu       sync.Mutex
	listener *Listener
}

// NewApp builds an App over the three remote services.
func NewApp(identity Identity, persistence Persistence, feeds FeedOpener, log *zap.Logger) *App {
	if log == nil {
		log = zap.NewNop()
	}
	return &App{
		Sessions:    NewSessionManager(identity, log),
		View:        NewView(persistence, log),
		persistence: persistence,
		feeds:       feeds,
		log:         log,
	}
}

// Run subscribes to session transitions and resolves the initial session.
// It returns once the initial state is known; the listener keeps running in
// the background until the session ends or Close is called.
func (a *App) Run(ctx context.Context) {
	a.Sessions.Subscribe(func(s *Session) {
		if s != nil {
			a.attach(ctx)
		} else {
			a.detach()
		}
	})
	a.Sessions.Start(ctx)
}

// attach activates the view, performs the initial fetch, and opens the feed
// subscription for the session's lifetime.
func (a *App) attach(ctx context.Context) {
	// Any previous subscription is torn down before a new one exists.
	a.detach()

	a.View.Attach()
	a.View.Refresh(ctx)

	sub, err := a.feeds.OpenFeed(ctx)
	if err != nil {
		// The cache still works, it just won't see remote changes.
		a.log.Warn("feed unavailable, live updates disabled", zap.Error(err))
		return
	}

	l := NewListener(sub, a.View)
	a.mu.Lock()
	a.listener = l
	a.mu.Unlock()

	go l.Run(ctx)
}

// detach tears down the listener before the view so that no event observed
// during teardown can repopulate a dead cache.
func (a *App) detach() {
	a.mu.Lock()
	l := a.listener
	a.listener = nil
	a.mu.Unlock()

	if l != nil {
		l.Stop()
	}
	a.View.Detach()
}

// Add inserts a bookmark owned by the current identity. Empty title or url
// makes the whole operation a silent no-op with no remote call. The url is
// normalized to carry a scheme. Success or failure, the view refreshes
// afterward.
func (a *App) Add(ctx context.Context, title, url string) {
	if title == "" || url == "" {
		return
	}

	if err := a.persistence.InsertBookmark(ctx, title, NormalizeURL(url)); err != nil {
		a.log.Warn("insert failed", zap.Error(err))
	}
	a.View.Refresh(ctx)
}

// Delete removes the bookmark with the given identifier. Ownership is the
// remote layer's concern, not checked here. Success or failure, the view
// refreshes afterward.
func (a *App) Delete(ctx context.Context, id string) {
	if err := a.persistence.DeleteBookmark(ctx, id); err != nil {
		a.log.Warn("delete failed", zap.String("id", id), zap.Error(err))
	}
	a.View.Refresh(ctx)
}

// SignOut ends the session; the resulting notification detaches the view
// and listener.
func (a *App) SignOut(ctx context.Context) {
	a.Sessions.SignOut(ctx)
}

// Close tears down the listener and view without touching the remote
// session.
func (a *App) Close() {
	a.detach()
}
