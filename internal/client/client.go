// Package client keeps a local bookmark list consistent with a remote,
// multi-writer data set under a live-update feed. The remote services
// (identity, persistence, change feed) are consumed through interfaces so
// the synchronization behavior is independent of transport; Remote in this
// package implements all three against a marks server.
//
// The cached list is never patched incrementally: any change notification,
// local or remote, triggers a full re-fetch that replaces the cache
// wholesale.
package client

import (
	"context"
	"time"
)

// Bookmark is one entry of the remote data set, as seen by this client.
type Bookmark struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is an authenticated identity valid for the current process
// lifetime.
type Session struct {
	UserID string
	Email  string
}

// Identity is the external identity provider.
type Identity interface {
	// CurrentSession returns the existing valid session, or (nil, nil) when
	// there is none.
	CurrentSession(ctx context.Context) (*Session, error)
	// SignOut invalidates the current session.
	SignOut(ctx context.Context) error
}

// Persistence is the external persistence/query layer. ListBookmarks returns
// the full set visible to the current identity, newest first. Access scope
// is enforced remotely, never by client-side filtering.
type Persistence interface {
	ListBookmarks(ctx context.Context) ([]Bookmark, error)
	InsertBookmark(ctx context.Context, title, url string) error
	DeleteBookmark(ctx context.Context, id string) error
}

// FeedEvent is one change notification. The payload is deliberately thin:
// consumers re-fetch rather than patch.
type FeedEvent struct {
	Type string `json:"type"` // insert, update, or delete
	ID   string `json:"id"`
}

// FeedSubscription is a live registration on the change feed.
type FeedSubscription interface {
	// Events yields change events until the subscription ends, then closes.
	Events() <-chan FeedEvent
	// Cancel tears the subscription down. Synchronous and idempotent.
	Cancel()
}

// FeedOpener opens a subscription to the bookmark collection's change feed.
// The feed is unfiltered by event type and by owner; the remote service
// scopes visibility to the current identity.
type FeedOpener interface {
	OpenFeed(ctx context.Context) (FeedSubscription, error)
}
